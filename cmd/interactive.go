package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// promptPath asks for the DBC path on w and reads one line from r.
// Surrounding quotes, as left by drag-and-drop into a terminal, are removed.
func promptPath(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Path to the .dbc file: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read path: %w", err)
	}
	path := strings.Trim(strings.TrimSpace(line), `"'`)
	if path == "" {
		return "", fmt.Errorf("no .dbc file given")
	}
	return path, nil
}

// progressLine draws a single self-overwriting progress line on a terminal.
// Off a terminal it only logs completion at debug level.
type progressLine struct {
	w       io.Writer
	tty     bool
	logger  *slog.Logger
	percent int
	drawn   bool
}

func newProgressLine(w io.Writer, tty bool, logger *slog.Logger) *progressLine {
	return &progressLine{w: w, tty: tty, logger: logger, percent: -1}
}

func (p *progressLine) Update(done, total int) {
	if total == 0 {
		return
	}
	if !p.tty {
		if done == total {
			p.logger.Debug("signals processed", "done", done, "total", total)
		}
		return
	}
	pct := done * 100 / total
	if pct == p.percent && done != total {
		return
	}
	p.percent = pct
	p.drawn = true
	fmt.Fprintf(p.w, "\rConverting: %d/%d signals (%d%%)", done, total, pct)
}

// Finish ends the progress line.
func (p *progressLine) Finish() {
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}

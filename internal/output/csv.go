// Package output writes the relational tables as delimited text files.
package output

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// ErrSinkWrite is matched by every error raised while writing a table.
var ErrSinkWrite = errors.New("table write failed")

type WriteError struct {
	Table string
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s table to %s: %v", e.Table, e.Path, e.Err)
}

func (e *WriteError) Is(target error) bool { return target == ErrSinkWrite }
func (e *WriteError) Unwrap() error        { return e.Err }

// Options are presentation settings; they never change row content.
type Options struct {
	Delimiter    rune
	Encoding     string // "utf-8-sig" (UTF-8 with BOM), "utf-8" or a WHATWG name
	DecimalComma bool
}

// DefaultOptions are comma separated UTF-8 with a byte-order mark and '.'
// decimals.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Encoding: "utf-8-sig"}
}

// Encoding resolves an encoding name. "utf-8-sig" selects UTF-8 with a
// leading byte-order mark.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8-sig", "utf8-sig", "utf-8-bom":
		return unicode.UTF8BOM, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// Row is any table row.
type Row interface {
	Record() []string
}

// WriteTable writes the header and rows of one table to w.
func WriteTable(w io.Writer, table model.Table, rows []Row, opts Options) error {
	enc, err := Encoding(opts.Encoding)
	if err != nil {
		return err
	}

	ew := encoding.ReplaceUnsupported(enc.NewEncoder()).Writer(w)
	bw := bufio.NewWriter(ew)

	cw := csv.NewWriter(bw)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if err := cw.Write(table.Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(present(r.Record(), table.Numeric, opts)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if c, ok := ew.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// present applies the decimal separator to the numeric columns.
func present(rec []string, numeric []int, opts Options) []string {
	if !opts.DecimalComma {
		return rec
	}
	for _, i := range numeric {
		if i < len(rec) && rec[i] != model.NA {
			rec[i] = strings.ReplaceAll(rec[i], ".", ",")
		}
	}
	return rec
}

// Package converter runs one conversion: load the DBC, build the relational
// tables, and commit the non-empty ones to their files.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/StinkyLord/dbc-relational/internal/dbc"
	"github.com/StinkyLord/dbc-relational/internal/logging"
	"github.com/StinkyLord/dbc-relational/internal/model"
	"github.com/StinkyLord/dbc-relational/internal/normalize"
	"github.com/StinkyLord/dbc-relational/internal/output"
)

// Request names the source database and the three destination files.
type Request struct {
	Source string
	CAN    string
	VTB    string
	ARR    string
}

// DefaultRequest derives the destinations next to the source:
// <dir>/<stem>_CAN.csv, <stem>_VTB.csv and <stem>_ARR.csv.
func DefaultRequest(source string) Request {
	dir := filepath.Dir(source)
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return Request{
		Source: source,
		CAN:    filepath.Join(dir, stem+"_CAN.csv"),
		VTB:    filepath.Join(dir, stem+"_VTB.csv"),
		ARR:    filepath.Join(dir, stem+"_ARR.csv"),
	}
}

// ErrPathConflict is matched by errors for requests that reuse a path.
var ErrPathConflict = errors.New("conflicting paths")

// Validate checks that the three destinations are distinct files and that
// none of them is the source.
func (r Request) Validate() error {
	seen := map[string]string{}
	for _, p := range []struct{ name, path string }{
		{"source", r.Source},
		{"CAN", r.CAN},
		{"VTB", r.VTB},
		{"ARR", r.ARR},
	} {
		abs, err := filepath.Abs(p.path)
		if err != nil {
			return fmt.Errorf("cannot resolve %s path %q: %w", p.name, p.path, err)
		}
		if prev, ok := seen[abs]; ok {
			return fmt.Errorf("%w: %s and %s both point to %s", ErrPathConflict, prev, p.name, abs)
		}
		seen[abs] = p.name
	}
	return nil
}

// Settings are the non-path knobs of a conversion.
type Settings struct {
	InputEncoding string
	Output        output.Options
	Logger        *slog.Logger
	Progress      func(done, total int)

	// ReportPath, when set, receives a JSON conversion report ("-" for stdout).
	ReportPath  string
	ToolVersion string
}

// Result summarises a finished conversion.
type Result struct {
	RunID    string
	Messages int
	Signals  int
	CANRows  int
	VTBRows  int
	ARRRows  int
	Written  []string
}

// Convert performs the whole conversion. Any fatal error leaves no table
// file written.
func Convert(ctx context.Context, req Request, s Settings) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{RunID: uuid.NewString()}
	logger = logging.WithRun(logger, res.RunID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("loading database", "source", req.Source)
	db, err := dbc.LoadFile(req.Source, dbc.WithEncoding(s.InputEncoding))
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	res.Messages = len(db.Messages)
	res.Signals = db.SignalCount()
	logger.Info("database loaded", "messages", res.Messages, "signals", res.Signals)

	tables, err := Build(db, logger, s.Progress)
	if err != nil {
		return nil, err
	}
	res.CANRows, res.VTBRows, res.ARRRows = len(tables.CAN), len(tables.VTB), len(tables.ARR)

	jobs := []output.Job{
		{Table: model.CANTable, Path: req.CAN, Rows: output.Rows(tables.CAN)},
		{Table: model.VTBTable, Path: req.VTB, Rows: output.Rows(tables.VTB)},
		{Table: model.ARRTable, Path: req.ARR, Rows: output.Rows(tables.ARR)},
	}

	if res.Signals == 0 {
		logger.Info("database has no signals, nothing to write")
	} else {
		written, err := output.Commit(ctx, jobs, s.Output)
		res.Written = written
		if err != nil {
			return res, fmt.Errorf("commit failed: %w", err)
		}
		for _, p := range written {
			logger.Info("table written", "path", p)
		}
	}

	if s.ReportPath != "" {
		if err := writeReport(res, req, db, tables, jobs, s); err != nil {
			return res, fmt.Errorf("report failed: %w", err)
		}
		logger.Info("report written", "path", s.ReportPath)
	}
	return res, nil
}

func writeReport(res *Result, req Request, db *model.Database, tables *normalize.Tables, jobs []output.Job, s Settings) error {
	tree, err := model.BuildTree(db.Messages, tables.CAN)
	if err != nil {
		return err
	}
	report := output.NewReport(res.RunID, s.ToolVersion, req.Source)
	if db.Network != nil {
		report.Network = *db.Network
	}
	report.AddTables(jobs, res.Written)
	report.Tree = append(report.Tree, tree...)
	return output.WriteReport(report, s.ReportPath)
}

// Build runs the relational builder over a loaded database.
func Build(db *model.Database, logger *slog.Logger, progress func(done, total int)) (*normalize.Tables, error) {
	opts := []normalize.Option{normalize.WithLogger(logger)}
	if progress != nil {
		opts = append(opts, normalize.WithProgress(progress))
	}
	tables, err := normalize.Build(db.Messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}
	return tables, nil
}

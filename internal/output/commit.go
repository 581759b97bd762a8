package output

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// Job is one table destined for one file.
type Job struct {
	Table model.Table
	Path  string
	Rows  []Row
}

// Rows converts a typed row slice for use in a Job.
func Rows[T Row](rows []T) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// Commit writes every job that has rows; jobs without rows produce no file.
// Tables are staged to temporary files next to their destination and only
// renamed into place once all of them were written, so a failed write
// leaves no new table behind. A failure during the final renames can leave
// the tables renamed before it in place.
func Commit(ctx context.Context, jobs []Job, opts Options) ([]string, error) {
	if _, err := Encoding(opts.Encoding); err != nil {
		return nil, err
	}

	temps := make([]string, len(jobs))
	cleanup := func() {
		for _, t := range temps {
			if t != "" {
				_ = os.Remove(t)
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		if len(job.Rows) == 0 {
			continue
		}
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return &WriteError{Table: job.Table.Name, Path: job.Path, Err: err}
			}
			tmp, err := stage(job, opts)
			if tmp != "" {
				temps[i] = tmp
			}
			if err != nil {
				return &WriteError{Table: job.Table.Name, Path: job.Path, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleanup()
		return nil, err
	}

	var written []string
	for i, job := range jobs {
		if temps[i] == "" {
			continue
		}
		if err := os.Rename(temps[i], job.Path); err != nil {
			cleanup()
			return written, &WriteError{Table: job.Table.Name, Path: job.Path, Err: err}
		}
		temps[i] = ""
		written = append(written, job.Path)
	}
	return written, nil
}

// stage writes a job to a temporary file in the destination directory and
// returns its name. The name is returned even on error so it can be removed.
func stage(job Job, opts Options) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(job.Path), "."+filepath.Base(job.Path)+".*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()

	if err := WriteTable(f, job.Table, job.Rows, opts); err != nil {
		f.Close()
		return name, err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		return name, err
	}
	if err := f.Close(); err != nil {
		return name, err
	}
	return name, nil
}

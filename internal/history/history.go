// Package history keeps a local journal of ingestion runs and the outcome of
// every file in them.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lethalbit/bookwurm/internal/db"
	"github.com/lethalbit/bookwurm/internal/indexer"
)

// Run is one journaled ingestion run.
type Run struct {
	ID             uuid.UUID
	Root           string
	Workers        int
	StartedAt      time.Time
	FinishedAt     time.Time // Zero while the run is in progress.
	Total          int
	Indexed        int
	AlreadyIndexed int
	Unsupported    int
	Failed         int
	Cancelled      int
}

// Finished reports whether the run recorded its result.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// FileRecord is the journaled outcome of one file.
type FileRecord struct {
	Path       string
	DocumentID string
	Outcome    string
	Error      string
	Duration   time.Duration
}

// Store reads and writes the journal.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by d.
func NewStore(d *db.DB) *Store {
	return &Store{db: d, now: func() time.Time { return time.Now().UTC() }}
}

// Begin opens a new run and returns its ID.
func (s *Store) Begin(ctx context.Context, root string, workers int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, workers, started_at) VALUES (?, ?, ?, ?)`,
		id.String(), root, workers, s.now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning run: %w", err)
	}
	return id, nil
}

// RecordFile journals the outcome of one file. Recording the same path twice
// in a run keeps the latest outcome.
func (s *Store) RecordFile(ctx context.Context, runID uuid.UUID, fo indexer.FileOutcome) error {
	var msg string
	if fo.Err != nil {
		msg = fo.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_files (run_id, path, document_id, outcome, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, path) DO UPDATE SET
		   document_id = excluded.document_id,
		   outcome = excluded.outcome,
		   error = excluded.error,
		   duration_ms = excluded.duration_ms`,
		runID.String(), fo.Entry.Path, string(fo.ID), fo.Outcome.String(), msg, fo.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", fo.Entry.Path, err)
	}
	return nil
}

// Finish stores the run's final counts.
func (s *Store) Finish(ctx context.Context, runID uuid.UUID, res *indexer.Result) error {
	out, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, indexed = ?, already_indexed = ?,
		   unsupported = ?, failed = ?, cancelled = ?
		 WHERE id = ?`,
		s.now(), res.Total, res.Indexed, res.AlreadyIndexed, res.Unsupported, res.Failed, res.Cancelled,
		runID.String(),
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: no such run", runID)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, workers, started_at, finished_at, total, indexed, already_indexed,
		        unsupported, failed, cancelled
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			id       string
			finished *time.Time
		)
		if err := rows.Scan(&id, &r.Root, &r.Workers, &r.StartedAt, &finished, &r.Total, &r.Indexed,
			&r.AlreadyIndexed, &r.Unsupported, &r.Failed, &r.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", id, err)
		}
		if finished != nil {
			r.FinishedAt = *finished
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the journaled files of a run, optionally filtered by
// outcome, ordered by path.
func (s *Store) Files(ctx context.Context, runID uuid.UUID, outcome string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, document_id, outcome, error, duration_ms FROM run_files
		 WHERE run_id = ? AND (? = '' OR outcome = ?)
		 ORDER BY path`, runID.String(), outcome, outcome)
	if err != nil {
		return nil, fmt.Errorf("listing files of run %s: %w", runID, err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var (
			f  FileRecord
			ms int64
		)
		if err := rows.Scan(&f.Path, &f.DocumentID, &f.Outcome, &f.Error, &ms); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.Duration = time.Duration(ms) * time.Millisecond
		files = append(files, f)
	}
	return files, rows.Err()
}

// Observer returns an outcome callback journaling every file of runID.
// Journal failures are logged and never interrupt ingestion.
func (s *Store) Observer(ctx context.Context, runID uuid.UUID, logger *slog.Logger) indexer.OutcomeFunc {
	return func(fo indexer.FileOutcome) {
		if err := s.RecordFile(context.WithoutCancel(ctx), runID, fo); err != nil {
			logger.Warn("journal write failed", "run", runID, "error", err)
		}
	}
}

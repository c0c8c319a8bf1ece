package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/index"
)

// Index is the part of the search index the pipeline writes through.
type Index interface {
	Existing(ctx context.Context, id document.ID) (index.Lookup, error)
	Upsert(ctx context.Context, records ...*document.Record) error
}

// Outcome is the terminal state of one file in a run.
type Outcome int

const (
	OutcomeIndexed Outcome = iota
	OutcomeAlreadyIndexed
	OutcomeUnsupported
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIndexed:
		return "indexed"
	case OutcomeAlreadyIndexed:
		return "already_indexed"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// FileOutcome reports what happened to one file.
type FileOutcome struct {
	Entry    document.FileEntry
	ID       document.ID
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// OutcomeFunc observes each file as it completes. It may be called from
// several goroutines at once.
type OutcomeFunc func(FileOutcome)

// FileError ties a per-file failure to its path.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

// Result summarizes the outcome of a full ingestion run.
type Result struct {
	Total          int
	Indexed        int
	AlreadyIndexed int
	Unsupported    int
	Failed         int
	Cancelled      int
	Duration       time.Duration

	// Errors holds one *FileError per OutcomeFailed file, and nothing else.
	// Unsupported and cancelled files are only counted.
	Errors []error
}

// Count returns the number of files that ended with outcome o.
func (r *Result) Count(o Outcome) int {
	switch o {
	case OutcomeIndexed:
		return r.Indexed
	case OutcomeAlreadyIndexed:
		return r.AlreadyIndexed
	case OutcomeUnsupported:
		return r.Unsupported
	case OutcomeFailed:
		return r.Failed
	case OutcomeCancelled:
		return r.Cancelled
	}
	return 0
}

func (r *Result) record(fo FileOutcome) {
	switch fo.Outcome {
	case OutcomeIndexed:
		r.Indexed++
	case OutcomeAlreadyIndexed:
		r.AlreadyIndexed++
	case OutcomeUnsupported:
		r.Unsupported++
	case OutcomeFailed:
		r.Failed++
	case OutcomeCancelled:
		r.Cancelled++
	}
	if fo.Outcome == OutcomeFailed && fo.Err != nil {
		r.Errors = append(r.Errors, &FileError{Path: fo.Entry.Path, Err: fo.Err})
	}
}

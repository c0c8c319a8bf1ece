package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/extract"
	"github.com/lethalbit/bookwurm/internal/fingerprint"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/progress"
)

// DefaultWorkers returns a quarter of the available CPUs, at least one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()/4)
}

// Pipeline orchestrates the ingestion workflow per file:
// fingerprint -> existence check -> extract -> upsert.
type Pipeline struct {
	idx       Index
	registry  *extract.Registry
	workers   int
	reporter  progress.Reporter
	logger    *slog.Logger
	onOutcome OutcomeFunc
}

// NewPipeline creates a new Pipeline. A workers value below one selects
// DefaultWorkers.
func NewPipeline(idx Index, registry *extract.Registry, workers int) *Pipeline {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &Pipeline{
		idx:      idx,
		registry: registry,
		workers:  workers,
		reporter: progress.Nop{},
		logger:   slog.New(slog.DiscardHandler),
	}
}

// Workers returns the concurrency limit.
func (p *Pipeline) Workers() int { return p.workers }

// SetReporter sets the progress sink.
func (p *Pipeline) SetReporter(r progress.Reporter) {
	if r != nil {
		p.reporter = r
	}
}

// SetLogger sets the logger used for per-file diagnostics.
func (p *Pipeline) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// SetOutcomeFunc sets the per-file outcome callback.
func (p *Pipeline) SetOutcomeFunc(fn OutcomeFunc) {
	p.onOutcome = fn
}

// Run ingests entries with at most Workers files in flight. Per-file
// failures are recorded in the result and never abort the run. Once ctx is
// cancelled no further files are dispatched; those files are counted as
// cancelled.
func (p *Pipeline) Run(ctx context.Context, entries []document.FileEntry) *Result {
	start := time.Now()
	result := &Result{Total: len(entries)}
	p.reporter.SetTotal(len(entries))

	var mu sync.Mutex
	finish := func(fo FileOutcome) {
		mu.Lock()
		result.record(fo)
		mu.Unlock()
		if p.onOutcome != nil {
			p.onOutcome(fo)
		}
		p.reporter.Advance(fo.Entry.Name())
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, entry := range entries {
		if ctx.Err() != nil {
			finish(FileOutcome{Entry: entry, Outcome: OutcomeCancelled, Err: ctx.Err()})
			continue
		}
		g.Go(func() error {
			finish(p.process(ctx, entry))
			return nil
		})
	}
	_ = g.Wait()

	p.reporter.Finish()
	result.Duration = time.Since(start)
	return result
}

func (p *Pipeline) process(ctx context.Context, entry document.FileEntry) (fo FileOutcome) {
	start := time.Now()
	fo.Entry = entry
	defer func() { fo.Duration = time.Since(start) }()

	log := p.logger.With("file", entry.Path)
	if ctx.Err() != nil {
		fo.Outcome, fo.Err = OutcomeCancelled, ctx.Err()
		return fo
	}

	fo.ID = fingerprint.Fingerprint(entry)
	log = log.With("id", fo.ID)

	lookup, err := p.idx.Existing(ctx, fo.ID)
	switch lookup {
	case index.LookupFound:
		log.Debug("already indexed")
		fo.Outcome = OutcomeAlreadyIndexed
		return fo
	case index.LookupNotFound:
	default:
		if err == nil {
			err = errors.New("lookup failed")
		}
		return p.fail(ctx, log, fo, fmt.Errorf("%w: %w", document.ErrExistenceCheck, err))
	}

	ex, err := p.registry.Lookup(entry.Type)
	if err != nil {
		log.Warn("unable to index", "type", string(entry.Type))
		fo.Outcome, fo.Err = OutcomeUnsupported, err
		return fo
	}

	rec, err := ex.Extract(ctx, fo.ID, entry)
	if err != nil {
		if !errors.Is(err, document.ErrExtraction) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", document.ErrExtraction, err)
		}
		return p.fail(ctx, log, fo, err)
	}

	if err := p.idx.Upsert(ctx, rec); err != nil {
		return p.fail(ctx, log, fo, err)
	}

	log.Debug("indexed", "pages", rec.TotalPages)
	fo.Outcome = OutcomeIndexed
	return fo
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, fo FileOutcome, err error) FileOutcome {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		fo.Outcome, fo.Err = OutcomeCancelled, err
		return fo
	}
	log.Error("unable to index", "error", err)
	fo.Outcome, fo.Err = OutcomeFailed, err
	return fo
}

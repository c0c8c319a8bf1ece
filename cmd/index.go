package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/config"
	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/extract"
	"github.com/lethalbit/bookwurm/internal/history"
	"github.com/lethalbit/bookwurm/internal/indexer"
	"github.com/lethalbit/bookwurm/internal/progress"
	"github.com/lethalbit/bookwurm/internal/walker"
)

var (
	indexJobs     int
	indexMaxDepth int
)

var indexCmd = &cobra.Command{
	Use:   "index [directory...]",
	Short: "Index the documents in one or more directories",
	Long: `Walks the given directories (or index_directories from the config file)
and adds every supported document that is not yet in the index.
Files already indexed are skipped, so interrupted runs can simply be repeated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		roots := args
		if len(roots) == 0 {
			roots = cfg.IndexDirectories
		}
		if len(roots) == 0 {
			return fmt.Errorf("no directories to index; pass one or set index_directories in %s", cfgFile)
		}
		if err := checkRoots(roots); err != nil {
			return err
		}

		jobs := cfg.Jobs
		if cmd.Flags().Changed("jobs") {
			jobs = indexJobs
		}
		maxDepth := cfg.MaxDepth
		if cmd.Flags().Changed("max-depth") {
			maxDepth = indexMaxDepth
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := newIndexClient(cfg)
		if err := client.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("preparing index %s: %w", client.IndexUID(), err)
		}

		journal, closeJournal := openJournal(cfg)
		defer closeJournal()

		for _, root := range roots {
			if ctx.Err() != nil {
				break
			}
			res, err := indexRoot(ctx, cfg, client, journal, root, jobs, maxDepth)
			if err != nil {
				return err
			}
			printIndexSummary(os.Stdout, root, res, stylesFor(os.Stdout))
		}
		return nil
	},
}

// checkRoots requires every root to be an existing directory.
func checkRoots(roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", root, document.ErrRootNotFound)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s: not a directory", root)
		}
	}
	return nil
}

// indexRoot collects and ingests one directory tree.
func indexRoot(ctx context.Context, cfg *config.Config, idx indexer.Index, journal *history.Store, root string, jobs, maxDepth int) (*indexer.Result, error) {
	reporter := progress.NewReporter()

	entries, err := walker.Collect(root, walker.Options{
		Exclude:  cfg.Exclude,
		MaxDepth: maxDepth,
		OnDirectory: func(found int) {
			reporter.Describe(fmt.Sprintf("Collecting files (%d found)", found))
		},
		OnSkip: func(path string, err error) {
			logger.Warn("skipping unreadable entry", "path", path, "error", err)
		},
	})
	if err != nil {
		reporter.Finish()
		return nil, fmt.Errorf("collecting %s: %w", root, err)
	}
	logger.Debug("collected files", "root", root, "count", len(entries))

	pipeline := indexer.NewPipeline(idx, extract.DefaultRegistry(), jobs)
	pipeline.SetReporter(reporter)
	pipeline.SetLogger(logger)

	var runID uuid.UUID
	if journal != nil {
		runID, err = journal.Begin(ctx, root, pipeline.Workers())
		if err != nil {
			logger.Warn("journal write failed", "error", err)
			journal = nil
		} else {
			pipeline.SetOutcomeFunc(journal.Observer(ctx, runID, logger))
		}
	}

	res := pipeline.Run(ctx, entries)

	if journal != nil {
		if err := journal.Finish(context.WithoutCancel(ctx), runID, res); err != nil {
			logger.Warn("journal write failed", "run", runID, "error", err)
		}
	}
	return res, nil
}

func init() {
	indexCmd.Flags().IntVarP(&indexJobs, "jobs", "j", 0, "number of concurrent workers (default: number of CPUs / 4)")
	indexCmd.Flags().IntVar(&indexMaxDepth, "max-depth", 0, "maximum directory depth to descend (0 = unlimited)")
	rootCmd.AddCommand(indexCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/history"
)

var statsRuns int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics and recent indexing runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		stats, err := newIndexClient(cfg).Stats(ctx)
		if err != nil {
			return fmt.Errorf("fetching stats: %w", err)
		}

		var runs []history.Run
		if statsRuns > 0 {
			journal, closeJournal := openJournal(cfg)
			defer closeJournal()
			if journal != nil {
				runs, err = journal.Recent(ctx, statsRuns)
				if err != nil {
					logger.Warn("reading run journal failed", "error", err)
				}
			}
		}

		printStats(os.Stdout, stats, runs, stylesFor(os.Stdout))
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsRuns, "runs", 5, "number of recent indexing runs to show")
	rootCmd.AddCommand(statsCmd)
}

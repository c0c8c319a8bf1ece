package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/config"
	"github.com/lethalbit/bookwurm/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logJSON bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "bookwurm",
	Short: "Index and search a library of documents",
	Long: `bookwurm walks your document directories, extracts the text of every
PDF, text and markdown file it finds and stores it in a Meilisearch index.
The index can then be searched from the command line, over HTTP, or by AI
agents via MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.Config{
			Level: logging.LevelFor(verbose),
			JSON:  logJSON,
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

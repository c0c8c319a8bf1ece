package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/search"
)

var (
	searchLimit    int
	searchDetailed bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed documents",
	Long:  `Runs a full-text query against the index. With --detailed-results every hit lists the matching pages with highlighted context.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, err := newSearchService(cfg, newIndexClient(cfg))
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		limit := cfg.Search.Limit
		if cmd.Flags().Changed("limit") {
			limit = searchLimit
		}

		if !searchJSON {
			fmt.Printf("Searching for: '%s'\n", query)
		}

		res, err := svc.Search(context.Background(), search.Query{
			Text:     query,
			Limit:    limit,
			Detailed: searchDetailed,
		})
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printSearchResults(os.Stdout, res, stylesFor(os.Stdout))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", search.DefaultLimit, "maximum number of results")
	searchCmd.Flags().BoolVarP(&searchDetailed, "detailed-results", "D", false, "show matching pages with context")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/lethalbit/bookwurm/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := newIndexClient(cfg)
		svc, err := newSearchService(cfg, client)
		if err != nil {
			return err
		}

		count := -1
		if stats, err := client.Stats(context.Background()); err != nil {
			// Keep serving; the index may come up later.
			logger.Warn("index not reachable", "url", cfg.Meilisearch.URL(), "error", err)
		} else {
			count = stats.NumberOfDocuments
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "bookwurm MCP server started on stdio (index=%s, documents=%d)\n", client.IndexUID(), count)

		srv := mcpserver.NewServer(svc, client, cfg.Search.Limit)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

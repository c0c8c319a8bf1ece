package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/server"
)

var (
	serverPort     int
	serverAllowAll bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP search API",
	Long:  `Starts a REST API exposing search, index statistics and the indexing run journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		client := newIndexClient(cfg)
		svc, err := newSearchService(cfg, client)
		if err != nil {
			return err
		}

		journal, closeJournal := openJournal(cfg)
		defer closeJournal()

		srv := server.New(server.Config{
			Port:         port,
			AllowAll:     serverAllowAll,
			DefaultLimit: cfg.Search.Limit,
		}, svc, client, journal, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
		}()

		fmt.Fprintf(os.Stderr, "bookwurm server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Meilisearch: %s (index %s)\n", cfg.Meilisearch.URL(), client.IndexUID())
		if journal != nil {
			fmt.Fprintf(os.Stderr, "  Journal: %s\n", cfg.DatabasePath())
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (default from config, 7710)")
	serverCmd.Flags().BoolVar(&serverAllowAll, "cors-allow-all", false, "allow requests from any origin")
	rootCmd.AddCommand(serverCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/lethalbit/bookwurm/internal/config"
	"github.com/lethalbit/bookwurm/internal/db"
	"github.com/lethalbit/bookwurm/internal/history"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/search"
)

// loadConfig loads and validates the config, writing the default file first
// when none exists.
func loadConfig() (*config.Config, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	created, err := config.EnsureDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Warn("configuration file does not exist, creating default", "path", cfgFile)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `bookwurm init` to create a config file", err)
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingKey) {
			logger.Error(err.Error())
			logger.Error("bookwurm configuration file is located at " + cfgFile)
		}
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newIndexClient creates the Meilisearch client from config.
func newIndexClient(cfg *config.Config) *index.Client {
	return index.New(index.Config{
		URL:          cfg.Meilisearch.URL(),
		APIKey:       cfg.Meilisearch.Key,
		IndexUID:     cfg.Meilisearch.Index,
		WaitTimeout:  cfg.Meilisearch.WaitTimeout,
		PollInterval: cfg.Meilisearch.PollInterval,
	})
}

// newSearchService wraps client with the configured search defaults.
func newSearchService(cfg *config.Config, client *index.Client) (*search.Service, error) {
	return search.NewService(client, search.Options{
		Limit:        cfg.Search.Limit,
		ContextWidth: cfg.Search.ContextWidth,
		CacheSize:    cfg.Search.CacheSize,
	})
}

// openJournal opens the run journal. A journal that cannot be opened is
// logged and reported as nil; callers carry on without it.
func openJournal(cfg *config.Config) (*history.Store, func()) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		logger.Warn("run journal unavailable", "path", cfg.DatabasePath(), "error", err)
		return nil, func() {}
	}
	return history.NewStore(database), func() { _ = database.Close() }
}

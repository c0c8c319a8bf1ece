package config

import (
	"path/filepath"
	"time"
)

// DefaultExcludes are glob patterns excluded from ingestion by default.
var DefaultExcludes = []string{
	"**/*.part",
	"**/*.crdownload",
	"**/.~lock.*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IndexDirectories: []string{},
		Meilisearch: MeilisearchConfig{
			Host:         "http://127.0.0.1",
			Port:         7700,
			Index:        "bookwurm",
			WaitTimeout:  100 * time.Second,
			PollInterval: 500 * time.Millisecond,
		},
		Jobs:    0,
		Exclude: append([]string(nil), DefaultExcludes...),
		Search: SearchConfig{
			Limit:        20,
			ContextWidth: 128,
			CacheSize:    64,
		},
		Server: ServerConfig{
			Port: 7710,
		},
		DataDir: BookwurmDataDir(),
	}
}

// DatabasePath returns the location of the run journal.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "bookwurm.db")
}

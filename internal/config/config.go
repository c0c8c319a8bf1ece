package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: BOOKWURM_MEILISEARCH__KEY sets meilisearch.key.
const EnvPrefix = "BOOKWURM_"

// MaxContextWidth bounds search.context_width. Pages are far shorter, so
// larger values only show the whole page.
const MaxContextWidth = 1 << 20

// ErrMissingKey is returned by Validate when no Meilisearch key is set.
var ErrMissingKey = errors.New("a meilisearch key must be set in the bookwurm config file")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BOOKWURM_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps BOOKWURM_SEARCH__CONTEXT_WIDTH to search.context_width.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// EnsureDefault writes the default configuration to path when no file
// exists there. It reports whether a file was created.
func EnsureDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("accessing config %s: %w", path, err)
	}
	if err := DefaultConfig().Save(path); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the configuration to the given YAML file path. The file may
// hold an API key, so it is created user-readable only.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Meilisearch.Key) == "" {
		return ErrMissingKey
	}
	if c.Meilisearch.Host == "" {
		return fmt.Errorf("meilisearch.host is required")
	}
	if c.Meilisearch.Port < 0 || c.Meilisearch.Port > 65535 {
		return fmt.Errorf("invalid meilisearch.port %d", c.Meilisearch.Port)
	}
	if c.Meilisearch.Index == "" {
		return fmt.Errorf("meilisearch.index is required")
	}
	if c.Meilisearch.WaitTimeout <= 0 {
		return fmt.Errorf("meilisearch.wait_timeout must be positive")
	}
	if c.Meilisearch.PollInterval <= 0 {
		return fmt.Errorf("meilisearch.poll_interval must be positive")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be non-negative")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive")
	}
	if c.Search.ContextWidth < 0 || c.Search.ContextWidth > MaxContextWidth {
		return fmt.Errorf("search.context_width must be between 0 and %d", MaxContextWidth)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

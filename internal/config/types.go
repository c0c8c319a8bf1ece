package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the top-level bookwurm configuration, corresponding to
// config.yml in the bookwurm config directory.
type Config struct {
	IndexDirectories []string          `yaml:"index_directories" koanf:"index_directories"`
	Meilisearch      MeilisearchConfig `yaml:"meilisearch" koanf:"meilisearch"`
	Jobs             int               `yaml:"jobs" koanf:"jobs"`
	Exclude          []string          `yaml:"exclude" koanf:"exclude"`
	MaxDepth         int               `yaml:"max_depth" koanf:"max_depth"`
	Search           SearchConfig      `yaml:"search" koanf:"search"`
	Server           ServerConfig      `yaml:"server" koanf:"server"`
	DataDir          string            `yaml:"data_dir" koanf:"data_dir"`
}

// MeilisearchConfig holds connection settings for the search service.
type MeilisearchConfig struct {
	Host         string        `yaml:"host" koanf:"host"`
	Port         int           `yaml:"port" koanf:"port"`
	Key          string        `yaml:"key" koanf:"key"`
	Index        string        `yaml:"index" koanf:"index"`
	WaitTimeout  time.Duration `yaml:"wait_timeout" koanf:"wait_timeout"`
	PollInterval time.Duration `yaml:"poll_interval" koanf:"poll_interval"`
}

// URL joins host and port. A host that already carries a port is used as is.
func (m MeilisearchConfig) URL() string {
	host := strings.TrimRight(m.Host, "/")
	if u, err := url.Parse(host); m.Port == 0 || (err == nil && u.Port() != "") {
		return host
	}
	return fmt.Sprintf("%s:%d", host, m.Port)
}

// SearchConfig holds defaults for the search command and servers.
type SearchConfig struct {
	Limit        int `yaml:"limit" koanf:"limit"`
	ContextWidth int `yaml:"context_width" koanf:"context_width"`
	CacheSize    int `yaml:"cache_size" koanf:"cache_size"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port" koanf:"port"`
}

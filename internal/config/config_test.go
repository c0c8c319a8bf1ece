package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Meilisearch.Key = "masterKey"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://127.0.0.1", cfg.Meilisearch.Host)
	assert.Equal(t, 7700, cfg.Meilisearch.Port)
	assert.Equal(t, "bookwurm", cfg.Meilisearch.Index)
	assert.Equal(t, 100*time.Second, cfg.Meilisearch.WaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Meilisearch.PollInterval)
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.Equal(t, 128, cfg.Search.ContextWidth)
	assert.Zero(t, cfg.Jobs)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yml")

	original := validConfig()
	original.IndexDirectories = []string{"/srv/books", "/srv/papers"}
	original.Meilisearch.Port = 7701
	original.Meilisearch.WaitTimeout = 30 * time.Second
	original.Jobs = 3
	original.Search.ContextWidth = 64

	require.NoError(t, original.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Meilisearch.Key, loaded.Meilisearch.Key)
	assert.Equal(t, 7701, loaded.Meilisearch.Port)
	assert.Equal(t, 30*time.Second, loaded.Meilisearch.WaitTimeout)
	assert.Equal(t, 3, loaded.Jobs)
	assert.Equal(t, 64, loaded.Search.ContextWidth)
	assert.Equal(t, []string{"/srv/books", "/srv/papers"}, loaded.IndexDirectories)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7700, cfg.Meilisearch.Port)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "meilisearch:\n  key: abc\n  poll_interval: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Meilisearch.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Meilisearch.PollInterval)
	assert.Equal(t, "http://127.0.0.1", cfg.Meilisearch.Host, "host default lost")
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("BOOKWURM_MEILISEARCH__KEY", "from-env")
	t.Setenv("BOOKWURM_JOBS", "6")
	t.Setenv("BOOKWURM_SEARCH__CONTEXT_WIDTH", "32")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Meilisearch.Key)
	assert.Equal(t, 6, loaded.Jobs)
	assert.Equal(t, 32, loaded.Search.ContextWidth)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"BOOKWURM_MEILISEARCH__KEY":      "meilisearch.key",
		"BOOKWURM_INDEX_DIRECTORIES":     "index_directories",
		"BOOKWURM_SEARCH__CONTEXT_WIDTH": "search.context_width",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), "envKey(%q)", in)
	}
}

func TestEnsureDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookwurm", "config.yml")

	created, err := EnsureDefault(path)
	require.NoError(t, err)
	assert.True(t, created, "expected the default config to be created")

	created, err = EnsureDefault(path)
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingKey)
}

func TestValidateValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Search.ContextWidth = MaxContextWidth
	assert.NoError(t, cfg.Validate())
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.Meilisearch.Key = "  " }},
		{"empty host", func(c *Config) { c.Meilisearch.Host = "" }},
		{"bad port", func(c *Config) { c.Meilisearch.Port = 70000 }},
		{"empty index", func(c *Config) { c.Meilisearch.Index = "" }},
		{"zero wait timeout", func(c *Config) { c.Meilisearch.WaitTimeout = 0 }},
		{"zero poll interval", func(c *Config) { c.Meilisearch.PollInterval = 0 }},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"zero limit", func(c *Config) { c.Search.Limit = 0 }},
		{"negative context", func(c *Config) { c.Search.ContextWidth = -1 }},
		{"huge context", func(c *Config) { c.Search.ContextWidth = MaxContextWidth + 1 }},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMeilisearchURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"http://127.0.0.1", 7700, "http://127.0.0.1:7700"},
		{"http://search.local/", 7700, "http://search.local:7700"},
		{"http://search.local:8000", 7700, "http://search.local:8000"},
		{"https://search.example.com", 0, "https://search.example.com"},
	}
	for _, tt := range tests {
		got := MeilisearchConfig{Host: tt.host, Port: tt.port}.URL()
		assert.Equal(t, tt.want, got, "URL(%q, %d)", tt.host, tt.port)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	assert.Equal(t, filepath.Join(dir, "cfg", "bookwurm", "config.yml"), DefaultPath())
	assert.Equal(t, filepath.Join(dir, "data", "bookwurm", "bookwurm.db"), DefaultConfig().DatabasePath())

	require.NoError(t, EnsureDirs())
	for _, d := range []string{BookwurmCacheDir(), BookwurmConfigDir(), BookwurmDataDir()} {
		assert.DirExists(t, d)
	}
}

func TestXDGHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", "")

	assert.Equal(t, filepath.Join(dir, ".config"), ConfigDir())
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"/srv/books", []string{"/srv/books"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitAndTrim(tt.input), "splitAndTrim(%q)", tt.input)
	}
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, validatePort("7700"))
	for _, bad := range []string{"", "abc", "0", "65536"} {
		assert.Error(t, validatePort(bad), "%q should be invalid", bad)
	}
}

package config

import (
	"os"
	"path/filepath"
)

func xdgDir(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// HomeDir honours XDG_HOME before the user's home directory.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return xdgDir("XDG_HOME", home)
}

func CacheDir() string  { return xdgDir("XDG_CACHE_HOME", filepath.Join(HomeDir(), ".cache")) }
func DataDir() string   { return xdgDir("XDG_DATA_HOME", filepath.Join(HomeDir(), ".local", "share")) }
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", filepath.Join(HomeDir(), ".config")) }

func BookwurmCacheDir() string  { return filepath.Join(CacheDir(), "bookwurm") }
func BookwurmDataDir() string   { return filepath.Join(DataDir(), "bookwurm") }
func BookwurmConfigDir() string { return filepath.Join(ConfigDir(), "bookwurm") }

// DefaultPath is the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(BookwurmConfigDir(), "config.yml")
}

// EnsureDirs creates the bookwurm cache, config and data directories.
func EnsureDirs() error {
	for _, d := range []string{BookwurmCacheDir(), BookwurmConfigDir(), BookwurmDataDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

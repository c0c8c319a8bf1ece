// Package logging builds the structured loggers used across bookwurm.
// Output goes to stderr so stdout stays free for results and the MCP
// protocol stream.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// JSON selects the JSON handler instead of text.
	JSON bool
	// FilePath additionally writes logs to a file. Empty means none.
	FilePath string
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a logger for cfg without a log file.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return slog.New(newHandler(out, cfg))
}

// Setup returns a logger and a cleanup function closing the log file, if any.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if cfg.FilePath == "" {
		return New(cfg), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var out io.Writer = f
	if cfg.Output != nil {
		out = io.MultiWriter(f, cfg.Output)
	}
	cleanup := func() {
		_ = f.Sync()
		_ = f.Close()
	}
	return slog.New(newHandler(out, cfg)), cleanup, nil
}

// LevelFor maps the --verbose flag to a level name.
func LevelFor(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "info"
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

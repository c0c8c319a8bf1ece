package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "debug", LevelFor(true))
	assert.Equal(t, "info", LevelFor(false))
}

func TestNewTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	logger.Debug("hidden")
	logger.Info("unable to index", "file", "/books/a.pdf")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "file=/books/a.pdf")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", JSON: true, Output: &buf})
	logger.Debug("indexed", "pages", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "indexed", entry["msg"])
	assert.Equal(t, float64(3), entry["pages"])
}

func TestSetupWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bookwurm.log")
	logger, cleanup, err := Setup(Config{Level: "info", FilePath: path})
	require.NoError(t, err)
	logger.Info("serving", "transport", "stdio")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "transport=stdio")
}

func TestSetupWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := Setup(Config{Output: &buf})
	require.NoError(t, err)
	defer cleanup()

	logger.Warn("careful")
	assert.Contains(t, buf.String(), "careful")
}

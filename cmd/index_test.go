package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lethalbit/bookwurm/internal/config"
	"github.com/lethalbit/bookwurm/internal/db"
	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/history"
	"github.com/lethalbit/bookwurm/internal/index"
)

type memoryIndex struct {
	mu   sync.Mutex
	docs map[document.ID]*document.Record
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{docs: make(map[document.ID]*document.Record)}
}

func (m *memoryIndex) Existing(_ context.Context, id document.ID) (index.Lookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; ok {
		return index.LookupFound, nil
	}
	return index.LookupNotFound, nil
}

func (m *memoryIndex) Upsert(_ context.Context, records ...*document.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.docs[r.ID] = r
	}
	return nil
}

func writeLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"notes.txt":          "the spice must flow",
		"guide/intro.md":     "# Intro\n\nHello there.\n",
		"guide/cover.jpg":    "not a document",
		".git/objects/aa.md": "# excluded\n",
	}
	for name, body := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestIndexRoot(t *testing.T) {
	root := writeLibrary(t)
	idx := newMemoryIndex()
	cfg := config.DefaultConfig()

	res, err := indexRoot(context.Background(), cfg, idx, nil, root, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 1, res.Unsupported)
	assert.Len(t, idx.docs, 2)

	again, err := indexRoot(context.Background(), cfg, idx, nil, root, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, again.AlreadyIndexed)
	assert.Equal(t, 0, again.Indexed)
}

func TestIndexRootJournal(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	journal := history.NewStore(database)

	root := writeLibrary(t)
	_, err = indexRoot(context.Background(), config.DefaultConfig(), newMemoryIndex(), journal, root, 1, 0)
	require.NoError(t, err)

	runs, err := journal.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Finished())
	assert.Equal(t, 3, runs[0].Total)
	assert.Equal(t, 2, runs[0].Indexed)
	assert.Equal(t, 1, runs[0].Unsupported)

	files, err := journal.Files(context.Background(), runs[0].ID, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestIndexRootMissing(t *testing.T) {
	_, err := indexRoot(context.Background(), config.DefaultConfig(), newMemoryIndex(), nil,
		filepath.Join(t.TempDir(), "missing"), 1, 0)
	assert.ErrorIs(t, err, document.ErrRootNotFound)
}

func useTempConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))

	old := cfgFile
	cfgFile = filepath.Join(base, "config", "bookwurm", "config.yml")
	t.Cleanup(func() { cfgFile = old })
	return cfgFile
}

func TestLoadConfigWritesDefault(t *testing.T) {
	path := useTempConfig(t)

	_, err := loadConfig()
	assert.ErrorIs(t, err, config.ErrMissingKey)
	assert.FileExists(t, path)
}

func TestLoadConfigWithKey(t *testing.T) {
	useTempConfig(t)
	t.Setenv("BOOKWURM_MEILISEARCH__KEY", "masterKey")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "masterKey", cfg.Meilisearch.Key)

	client := newIndexClient(cfg)
	assert.Equal(t, "bookwurm", client.IndexUID())
}

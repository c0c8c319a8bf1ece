// Package fingerprint derives deterministic document identities from a
// file's name and its resolved parent directory. File contents are never
// read, so an edited file keeps its identity.
package fingerprint

import (
	"encoding/hex"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Fingerprint returns the ID for entry: a BLAKE2b-512 digest keyed with the
// file's base name over the fully resolved parent directory path.
func Fingerprint(entry document.FileEntry) document.ID {
	return Sum(entry.Name(), ResolveDir(filepath.Dir(entry.Path)))
}

// Sum computes the ID for a (name, parent) pair. The key is truncated to
// the BLAKE2b key size limit.
func Sum(name, parent string) document.ID {
	key := []byte(name)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}

	// New512 only fails for keys longer than 64 bytes.
	h, err := blake2b.New512(key)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(parent))

	id := hex.EncodeToString(h.Sum(nil))
	if len(id) > document.IDLength {
		id = id[:document.IDLength]
	}
	return document.ID(id)
}

// ResolveDir returns the absolute, symlink-resolved form of dir. When the
// directory cannot be resolved the cleaned absolute path is used.
func ResolveDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Options controls the behaviour of Collect.
type Options struct {
	Exclude  []string // Glob patterns, relative to the root, excluded from the result.
	MaxDepth int      // Directories deeper than this are not read (0 = unbounded).

	// OnDirectory is called after each directory has been fully read with
	// the number of files found so far.
	OnDirectory func(found int)

	// OnSkip is called for every entry that could not be read.
	OnSkip func(path string, err error)
}

type pending struct {
	path  string
	depth int
}

// Collect walks the tree rooted at root and returns an entry for every
// regular file found. The walk uses an explicit work list rather than
// recursion. Symlinked directories are not descended into; symlinked files
// are included when they resolve to regular files.
func Collect(root string, opts Options) ([]document.FileEntry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("walker: %s: %w", abs, document.ErrRootNotFound)
		}
		return nil, fmt.Errorf("walker: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", abs)
	}

	var files []document.FileEntry
	stack := []pending{{path: abs, depth: 0}}

	for len(stack) > 0 {
		wd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(wd.path)
		if err != nil {
			opts.skip(wd.path, err)
			// ReadDir returns what it could read alongside the error.
			if len(entries) == 0 {
				continue
			}
		}

		for _, e := range entries {
			path := filepath.Join(wd.path, e.Name())
			rel, err := filepath.Rel(abs, path)
			if err != nil {
				opts.skip(path, err)
				continue
			}

			switch {
			case e.IsDir():
				if shouldExcludeDir(e.Name()) || MatchesExclude(rel, opts.Exclude) {
					continue
				}
				if opts.MaxDepth > 0 && wd.depth+1 > opts.MaxDepth {
					continue
				}
				stack = append(stack, pending{path: path, depth: wd.depth + 1})

			case e.Type().IsRegular():
				if shouldExcludeFile(e.Name()) || MatchesExclude(rel, opts.Exclude) {
					continue
				}
				files = append(files, document.FileEntry{Path: path, Type: document.DetectType(path)})

			case e.Type()&fs.ModeSymlink != 0:
				target, err := os.Stat(path)
				if err != nil {
					opts.skip(path, err)
					continue
				}
				if target.Mode().IsRegular() && !shouldExcludeFile(e.Name()) && !MatchesExclude(rel, opts.Exclude) {
					files = append(files, document.FileEntry{Path: path, Type: document.DetectType(path)})
				}
			}
		}

		if opts.OnDirectory != nil {
			opts.OnDirectory(len(files))
		}
	}

	return files, nil
}

func (o Options) skip(path string, err error) {
	if o.OnSkip != nil {
		o.OnSkip(path, err)
	}
}

package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Extractor builds a document record from one file. Implementations hold no
// state between calls and must be safe for concurrent use.
type Extractor interface {
	// Type returns the file type this extractor handles.
	Type() document.FileType

	// Extract reads entry and returns its record. Failures wrap
	// document.ErrExtraction.
	Extract(ctx context.Context, id document.ID, entry document.FileEntry) (*document.Record, error)
}

// Registry maps file types to extractors. It is read-only after construction.
type Registry struct {
	byType map[document.FileType]Extractor
}

// NewRegistry builds a registry from the given extractors. Registering two
// extractors for the same type is an error.
func NewRegistry(extractors ...Extractor) (*Registry, error) {
	r := &Registry{byType: make(map[document.FileType]Extractor, len(extractors))}
	for _, e := range extractors {
		t := e.Type()
		if t == document.TypeUnknown {
			return nil, fmt.Errorf("extractor %T declares no file type", e)
		}
		if _, dup := r.byType[t]; dup {
			return nil, fmt.Errorf("duplicate extractor for type %q", t)
		}
		r.byType[t] = e
	}
	return r, nil
}

// DefaultRegistry returns a registry with every built-in extractor.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(NewPDF(), NewText(), NewMarkdown())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the extractor for t, or an error wrapping
// document.ErrUnsupportedType.
func (r *Registry) Lookup(t document.FileType) (Extractor, error) {
	if e, ok := r.byType[t]; ok {
		return e, nil
	}
	if t == document.TypeUnknown {
		return nil, document.ErrUnsupportedType
	}
	return nil, fmt.Errorf("%w: %s", document.ErrUnsupportedType, t)
}

// Types returns the registered file types in sorted order.
func (r *Registry) Types() []document.FileType {
	types := make([]document.FileType, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

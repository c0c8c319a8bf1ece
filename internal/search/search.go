// Package search runs queries against the index and renders context
// snippets for the pages that matched.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/snippet"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultLimit     = 20
	DefaultCacheSize = 64
)

// Backend is the part of the index the search service reads from.
type Backend interface {
	Search(ctx context.Context, query string, opts index.SearchOptions) (*index.SearchResult, error)
	Pages(ctx context.Context, id document.ID) (map[int]string, error)
}

// Options configures a Service.
type Options struct {
	Limit        int // Default result limit.
	ContextWidth int // Bytes of context on each side of a match.
	CacheSize    int // Number of documents whose pages are cached.
}

// Query is one search request.
type Query struct {
	Text     string
	Limit    int
	Detailed bool
}

// PageSnippet is the rendered context for one matching page.
type PageSnippet struct {
	Page    int             `json:"page"`
	Snippet snippet.Snippet `json:"snippet"`
}

// Hit is a search hit with optional page snippets.
type Hit struct {
	index.Hit
	Snippets []PageSnippet `json:"snippets,omitempty"`
}

// Results is the answer to a Query.
type Results struct {
	Query              string        `json:"query"`
	Hits               []Hit         `json:"hits"`
	EstimatedTotalHits int           `json:"estimated_total_hits"`
	Limit              int           `json:"limit"`
	ProcessingTime     time.Duration `json:"processing_time_ns"`
}

// Summary renders the one-line result count.
func (r *Results) Summary() string {
	ms := r.ProcessingTime.Milliseconds()
	if r.EstimatedTotalHits > r.Limit {
		return fmt.Sprintf("Showing %d of %d results found in %dms", len(r.Hits), r.EstimatedTotalHits, ms)
	}
	return fmt.Sprintf("%d results found in %dms", r.EstimatedTotalHits, ms)
}

// Service answers queries. It is safe for concurrent use.
type Service struct {
	backend Backend
	opts    Options
	pages   *lru.Cache[document.ID, map[int]string]
}

// NewService creates a Service over backend.
func NewService(backend Backend, opts Options) (*Service, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.ContextWidth <= 0 {
		opts.ContextWidth = snippet.DefaultContextWidth
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[document.ID, map[int]string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}
	return &Service{backend: backend, opts: opts, pages: cache}, nil
}

// Search runs q. When q.Detailed is set, every hit carries one snippet per
// matching page in ascending page order.
func (s *Service) Search(ctx context.Context, q Query) (*Results, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.opts.Limit
	}

	res, err := s.backend.Search(ctx, q.Text, index.SearchOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	out := &Results{
		Query:              q.Text,
		Hits:               make([]Hit, 0, len(res.Hits)),
		EstimatedTotalHits: res.EstimatedTotalHits,
		Limit:              limit,
		ProcessingTime:     res.ProcessingTime,
	}
	for _, h := range res.Hits {
		hit := Hit{Hit: h}
		if q.Detailed {
			snips, err := s.snippets(ctx, h)
			if err != nil {
				return nil, err
			}
			hit.Snippets = snips
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func (s *Service) snippets(ctx context.Context, h index.Hit) ([]PageSnippet, error) {
	matched := make(map[int][]document.MatchSpan)
	for attr, spans := range h.Matches {
		if page, ok := index.PageIndex(attr); ok {
			matched[page] = append(matched[page], spans...)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	pages, err := s.pagesOf(ctx, h.ID)
	if err != nil {
		return nil, err
	}

	order := make([]int, 0, len(matched))
	for page := range matched {
		order = append(order, page)
	}
	sort.Ints(order)

	out := make([]PageSnippet, 0, len(order))
	for _, page := range order {
		text, ok := pages[page]
		if !ok {
			continue
		}
		snip := snippet.Render(text, matched[page], s.opts.ContextWidth)
		if snip.Empty() {
			continue
		}
		out = append(out, PageSnippet{Page: page, Snippet: snip})
	}
	return out, nil
}

func (s *Service) pagesOf(ctx context.Context, id document.ID) (map[int]string, error) {
	if pages, ok := s.pages.Get(id); ok {
		return pages, nil
	}
	pages, err := s.backend.Pages(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pages.Add(id, pages)
	return pages, nil
}

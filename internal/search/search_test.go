package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/snippet"
)

type fakeBackend struct {
	hits      []index.Hit
	total     int
	pages     map[document.ID]map[int]string
	pageCalls int
	lastLimit int
	searchErr error
}

func (f *fakeBackend) Search(_ context.Context, query string, opts index.SearchOptions) (*index.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastLimit = opts.Limit
	hits := f.hits
	if len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return &index.SearchResult{
		Query:              query,
		Hits:               hits,
		EstimatedTotalHits: f.total,
		Limit:              opts.Limit,
		ProcessingTime:     4 * time.Millisecond,
	}, nil
}

func (f *fakeBackend) Pages(_ context.Context, id document.ID) (map[int]string, error) {
	f.pageCalls++
	p, ok := f.pages[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return p, nil
}

func twoMatches() *fakeBackend {
	return &fakeBackend{
		hits: []index.Hit{
			{ID: "one", Title: "Dragons", Matches: map[string][]document.MatchSpan{
				"pages.3": {{Start: 4, Length: 6}},
				"pages.1": {{Start: 0, Length: 6}},
				"title":   {{Start: 0, Length: 7}},
			}},
			{ID: "two", Title: "Wyrms"},
		},
		total: 2,
		pages: map[document.ID]map[int]string{
			"one": {1: "dragon lore", 3: "the dragon sleeps"},
		},
	}
}

func newService(t *testing.T, b Backend) *Service {
	t.Helper()
	s, err := NewService(b, Options{})
	require.NoError(t, err)
	return s
}

func TestSearch_LimitedSummary(t *testing.T) {
	s := newService(t, twoMatches())

	res, err := s.Search(context.Background(), Query{Text: "dragon", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.EstimatedTotalHits)
	assert.Len(t, res.Hits, 1)
	assert.Equal(t, "Showing 1 of 2 results found in 4ms", res.Summary())
}

func TestSearch_UnlimitedSummary(t *testing.T) {
	s := newService(t, twoMatches())

	res, err := s.Search(context.Background(), Query{Text: "dragon", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, "2 results found in 4ms", res.Summary())
}

func TestSearch_DefaultLimit(t *testing.T) {
	b := twoMatches()
	s := newService(t, b)

	_, err := s.Search(context.Background(), Query{Text: "dragon"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, b.lastLimit)
}

func TestSearch_PlainHasNoSnippets(t *testing.T) {
	b := twoMatches()
	s := newService(t, b)

	res, err := s.Search(context.Background(), Query{Text: "dragon", Limit: 5})
	require.NoError(t, err)
	for _, h := range res.Hits {
		assert.Empty(t, h.Snippets)
	}
	assert.Zero(t, b.pageCalls)
}

func TestSearch_DetailedSnippetsInPageOrder(t *testing.T) {
	b := twoMatches()
	s := newService(t, b)

	res, err := s.Search(context.Background(), Query{Text: "dragon", Limit: 5, Detailed: true})
	require.NoError(t, err)

	snips := res.Hits[0].Snippets
	require.Len(t, snips, 2)
	assert.Equal(t, 1, snips[0].Page)
	assert.Equal(t, "[[dragon]] lore", snips[0].Snippet.Markup(snippet.Plain))
	assert.Equal(t, 3, snips[1].Page)
	assert.Equal(t, "the [[dragon]] sleeps", snips[1].Snippet.Markup(snippet.Plain))

	// The second hit matched no pages, so its pages are never fetched.
	assert.Empty(t, res.Hits[1].Snippets)
	assert.Equal(t, 1, b.pageCalls)
}

func TestSearch_PagesAreCached(t *testing.T) {
	b := twoMatches()
	s := newService(t, b)

	for i := 0; i < 3; i++ {
		_, err := s.Search(context.Background(), Query{Text: "dragon", Detailed: true})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, b.pageCalls)
}

func TestSearch_MissingPageIsSkipped(t *testing.T) {
	b := twoMatches()
	b.pages["one"] = map[int]string{1: "dragon lore"}
	s := newService(t, b)

	res, err := s.Search(context.Background(), Query{Text: "dragon", Detailed: true})
	require.NoError(t, err)
	require.Len(t, res.Hits[0].Snippets, 1)
	assert.Equal(t, 1, res.Hits[0].Snippets[0].Page)
}

func TestSearch_Errors(t *testing.T) {
	b := twoMatches()
	b.searchErr = errors.New("unreachable")
	s := newService(t, b)
	_, err := s.Search(context.Background(), Query{Text: "dragon"})
	assert.Error(t, err)

	b = twoMatches()
	delete(b.pages, "one")
	s = newService(t, b)
	_, err = s.Search(context.Background(), Query{Text: "dragon", Detailed: true})
	assert.True(t, strings.Contains(err.Error(), "not found"))
}

package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/history"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/indexer"
	"github.com/lethalbit/bookwurm/internal/search"
	"github.com/lethalbit/bookwurm/internal/snippet"
)

func duneResults() *search.Results {
	return &search.Results{
		Query: "spice",
		Hits: []search.Hit{{
			Hit: index.Hit{
				ID:         "a",
				Type:       document.TypePDF,
				File:       "/library/dune.pdf",
				Title:      "Dune",
				Author:     "Frank Herbert",
				TotalPages: 412,
				Matches: map[string][]document.MatchSpan{
					"title":   {{Start: 0, Length: 4}},
					"pages.2": {{Start: 4, Length: 5}},
				},
			},
			Snippets: []search.PageSnippet{{
				Page:    2,
				Snippet: snippet.Render("the spice must flow", []document.MatchSpan{{Start: 4, Length: 5}}, 128),
			}},
		}},
		EstimatedTotalHits: 3,
		Limit:              1,
		ProcessingTime:     7 * time.Millisecond,
	}
}

func TestPrintSearchResults(t *testing.T) {
	var buf bytes.Buffer
	printSearchResults(&buf, duneResults(), plainStyles())
	out := buf.String()

	assert.Contains(t, out, "Showing 1 of 3 results found in 7ms\n")
	assert.Contains(t, out, " * Dune (2 matches)\n")
	assert.Contains(t, out, "   dune (PDF, 412 pages, Frank Herbert)\n")
	assert.Contains(t, out, "Page 3 (1 matches)")
	assert.Contains(t, out, "the [[spice]] must flow")
}

func TestPrintSearchResultsUntitled(t *testing.T) {
	res := &search.Results{
		Hits: []search.Hit{{Hit: index.Hit{
			Type:    document.TypeText,
			File:    "/library/notes.txt",
			Matches: map[string][]document.MatchSpan{"pages.0": {{Start: 0, Length: 1}}},
		}}},
		EstimatedTotalHits: 1,
		Limit:              20,
	}

	var buf bytes.Buffer
	printSearchResults(&buf, res, plainStyles())
	out := buf.String()

	assert.Contains(t, out, "1 results found in 0ms\n")
	assert.Contains(t, out, " * /library/notes.txt (1 matches)\n")
	assert.Contains(t, out, "   notes (TEXT)\n")
	assert.NotContains(t, out, "Page")
}

func TestPrintIndexSummary(t *testing.T) {
	var buf bytes.Buffer
	printIndexSummary(&buf, "/library", &indexer.Result{
		Total:          6,
		Indexed:        3,
		AlreadyIndexed: 1,
		Unsupported:    1,
		Failed:         1,
		Duration:       1500 * time.Millisecond,
	}, plainStyles())
	out := buf.String()

	assert.Contains(t, out, "Indexed /library\n")
	assert.Contains(t, out, "Files:           6\n")
	assert.Contains(t, out, "Indexed:         3\n")
	assert.Contains(t, out, "Already indexed: 1\n")
	assert.Contains(t, out, "Failed:          1\n")
	assert.Contains(t, out, "Duration:        1.5s\n")
	assert.NotContains(t, out, "Cancelled")
}

func TestPrintIndexSummaryCancelled(t *testing.T) {
	var buf bytes.Buffer
	printIndexSummary(&buf, "/library", &indexer.Result{Total: 4, Indexed: 1, Cancelled: 3}, plainStyles())
	assert.Contains(t, buf.String(), "Cancelled:       3\n")
}

func TestPrintStats(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []history.Run{
		{ID: uuid.New(), Root: "/library", StartedAt: started, FinishedAt: started.Add(time.Minute), Total: 5, Indexed: 4, Failed: 1},
		{ID: uuid.New(), Root: "/papers", StartedAt: started},
	}

	var buf bytes.Buffer
	printStats(&buf, &index.Stats{NumberOfDocuments: 42}, runs, plainStyles())
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "bookwurm index stats:\n * Number of Documents: 42\n"))
	assert.NotContains(t, out, "Indexing in progress")
	assert.Contains(t, out, "/library: 5 files, 4 indexed, 0 already indexed, 0 unsupported, 1 failed\n")
	assert.Contains(t, out, "/papers: unfinished\n")
}

func TestPrintStatsNoRuns(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, &index.Stats{NumberOfDocuments: 0, IsIndexing: true}, nil, plainStyles())
	out := buf.String()

	assert.Contains(t, out, "Indexing in progress")
	assert.NotContains(t, out, "Recent runs")
}

func TestStylesAsSnippetStyle(t *testing.T) {
	var style snippet.Style = plainStyles()
	assert.Equal(t, "[[x]]", style.Highlight("x"))
	assert.Equal(t, " … ", style.Gap())

	assert.Contains(t, defaultStyles().Highlight("spice"), "spice")
}

func TestStylesForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, stylesFor(&buf).color)
}

package index

import (
	"time"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Lookup is the outcome of an existence check.
type Lookup int

const (
	// LookupError means the check itself failed; the accompanying error
	// carries the detail.
	LookupError Lookup = iota
	LookupFound
	LookupNotFound
)

func (l Lookup) String() string {
	switch l {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Fields retrieved for every search hit. Page text is fetched separately.
var hitAttributes = []string{"id", "title", "type", "author", "keywords", "file", "total_pages"}

// SearchOptions controls a search request.
type SearchOptions struct {
	Limit  int
	Offset int
}

// Hit is a single ranked search result.
type Hit struct {
	ID         document.ID                     `json:"id"`
	Type       document.FileType               `json:"type"`
	File       string                          `json:"file"`
	Title      string                          `json:"title"`
	Author     string                          `json:"author"`
	Keywords   []string                        `json:"keywords"`
	TotalPages int                             `json:"total_pages"`
	Matches    map[string][]document.MatchSpan `json:"_matchesPosition"`
}

// SearchResult is one page of ranked hits.
type SearchResult struct {
	Query              string
	Hits               []Hit
	EstimatedTotalHits int
	Limit              int
	ProcessingTime     time.Duration
}

// Stats describes the index.
type Stats struct {
	NumberOfDocuments int
	IsIndexing        bool
	FieldDistribution map[string]int
}

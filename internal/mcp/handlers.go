package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/search"
	"github.com/lethalbit/bookwurm/internal/snippet"
)

// handleSearchDocuments runs a full-text query against the index.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", s.defaultLimit)
	if limit <= 0 {
		limit = s.defaultLimit
	}

	results, err := s.searcher.Search(ctx, search.Query{
		Text:     query,
		Limit:    limit,
		Detailed: request.GetBool("detailed", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results.Hits) == 0 {
		return mcp.NewToolResultText("No results found. The library may not be indexed yet. Run `bookwurm index` to index it."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleIndexStats returns the document count of the index.
func (s *Server) handleIndexStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch index stats: %v", err)), nil
	}
	return mcp.NewToolResultText(formatStats(stats)), nil
}

// formatSearchResults converts search results into a text format suited
// for AI agent consumption.
func formatSearchResults(results *search.Results) string {
	var sb strings.Builder
	sb.WriteString(results.Summary())
	sb.WriteString("\n")

	for i, h := range results.Hits {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", h.Title)
		if h.Author != "" {
			fmt.Fprintf(&sb, "Author: %s\n", h.Author)
		}
		if len(h.Keywords) > 0 {
			fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(h.Keywords, ", "))
		}
		if h.Type != "" {
			fmt.Fprintf(&sb, "Type: %s\n", h.Type)
		}
		fmt.Fprintf(&sb, "File: %s\n", h.File)
		if h.TotalPages > 0 {
			fmt.Fprintf(&sb, "Pages: %d\n", h.TotalPages)
		}

		for _, ps := range h.Snippets {
			fmt.Fprintf(&sb, "\nPage %d:\n%s\n", ps.Page+1, ps.Snippet.Markup(snippet.Plain))
		}
	}

	return sb.String()
}

func formatStats(stats *index.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of documents: %d\n", stats.NumberOfDocuments)
	fmt.Fprintf(&sb, "Indexing: %t\n", stats.IsIndexing)

	fields := make([]string, 0, len(stats.FieldDistribution))
	for f := range stats.FieldDistribution {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(&sb, "  %s: %d\n", f, stats.FieldDistribution[f])
	}
	return sb.String()
}

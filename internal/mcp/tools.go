package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Full-text search over the indexed document library. Returns matching documents with title, author, keywords and file path, and optionally highlighted page excerpts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search terms"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
	mcp.WithBoolean("detailed",
		mcp.Description("Include highlighted excerpts from every matching page"),
	),
)

// indexStatsTool defines the index_stats MCP tool.
var indexStatsTool = mcp.NewTool("index_stats",
	mcp.WithDescription("Report how many documents are indexed and whether indexing is in progress."),
)

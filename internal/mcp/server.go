package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Searcher answers search queries.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Results, error)
}

// StatsSource reports index statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*index.Stats, error)
}

// Server wraps an MCP server that exposes the document index as tools.
type Server struct {
	searcher     Searcher
	stats        StatsSource
	defaultLimit int
	mcp          *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(searcher Searcher, stats StatsSource, defaultLimit int) *Server {
	if defaultLimit <= 0 {
		defaultLimit = search.DefaultLimit
	}
	s := &Server{
		searcher:     searcher,
		stats:        stats,
		defaultLimit: defaultLimit,
	}

	s.mcp = server.NewMCPServer(
		"bookwurm",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(indexStatsTool, s.handleIndexStats)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

// Package mcpserver exposes slop analysis as MCP tools over stdio so
// coding agents can query a project for dead code, duplicates, and
// dependency structure.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all slop analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all slop tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "slop",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_project",
		Description: describeAnalyzeProject(),
	}, handleAnalyzeProject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_dead_code",
		Description: describeFindDeadCode(),
	}, handleFindDeadCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_duplicates",
		Description: describeFindDuplicates(),
	}, handleFindDuplicates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dependency_graph",
		Description: describeDependencyGraph(),
	}, handleDependencyGraph)
}

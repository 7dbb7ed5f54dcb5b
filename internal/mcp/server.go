// Package mcp exposes the transcript index to AI agents over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/voxnote/voxnote/internal/indexer"
	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes transcript search tools.
type Server struct {
	store   *store.Store
	manager *indexer.Manager
	engine  *retrieval.Engine
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(st *store.Store, manager *indexer.Manager, engine *retrieval.Engine) *Server {
	s := &Server{
		store:   st,
		manager: manager,
		engine:  engine,
	}

	s.mcp = server.NewMCPServer(
		"voxnote",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchTranscriptsTool, s.handleSearchTranscripts)
	s.mcp.AddTool(askTranscriptsTool, s.handleAskTranscripts)
	s.mcp.AddTool(listSourcesTool, s.handleListSources)
	s.mcp.AddTool(getSummaryTool, s.handleGetSummary)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/voidindex/indexd/internal/config"
	"github.com/voidindex/indexd/internal/daemon"
	"github.com/voidindex/indexd/internal/indexer"
)

const (
	// ServerName is the MCP server name
	ServerName = "indexd"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cell    *daemon.ContextCell
	cfg     config.Config
	indexer *indexer.Indexer
	log     zerolog.Logger
}

// NewServer creates a new MCP server instance. The server starts without an
// indexing context; clients must call the initialize tool before indexing or
// searching.
func NewServer(cfg config.Config, log zerolog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		cell:    &daemon.ContextCell{},
		cfg:     cfg,
		indexer: indexer.New(indexer.Config{Concurrency: cfg.EmbedConcurrency}),
		log:     log,
	}

	s.registerTools()

	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeContext()
	return server.ServeStdio(s.mcp)
}

// closeContext releases the active indexing context's resources, if any.
func (s *Server) closeContext() {
	ictx, err := s.cell.Current()
	if err != nil {
		return
	}
	if cerr := ictx.Store.Close(); cerr != nil {
		s.log.Warn().Err(cerr).Msg("failed to close vector store")
	}
	if cerr := ictx.Embedder.Close(); cerr != nil {
		s.log.Warn().Err(cerr).Msg("failed to close embedder")
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(initializeTool(), s.handleInitialize)
	s.mcp.AddTool(indexChunksTool(), s.handleIndexChunks)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

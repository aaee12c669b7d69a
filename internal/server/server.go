// internal/server/server.go
package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"brainsgraph/internal/graph"
	"brainsgraph/internal/hub"
)

const (
	serverName    = "brainsgraph"
	serverVersion = "0.1.0"
)

// Server is the controller boundary: the MCP stdio surface through which
// the agent drives the highlight selection. Commands are processed
// strictly sequentially by the MCP request loop (the command context);
// the hub delivers the resulting notifications on its own goroutine.
type Server struct {
	mcpServer *mcp.Server
	store     *graph.Store
	hub       *hub.Hub
	log       *zap.Logger
}

func New(logger *zap.Logger, store *graph.Store, h *hub.Hub) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		store:     store,
		hub:       h,
		log:       logger.Named("mcp"),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves MCP over stdio until the client disconnects or ctx is
// cancelled. Stdout belongs to this transport; all logging goes to
// stderr or the log file.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("MCP server starting on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

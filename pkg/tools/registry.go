// Package tools provides the Naver Maps MCP tools implementations.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registry holds all MCP tool registrations for the Naver Maps service.
type Registry struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(dispatcher *Dispatcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterTools registers all tools with the MCP server. Every handler
// routes through the dispatcher so the tool table stays the single source
// of truth.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.dispatcher.Definitions() {
		r.logger.Info("registering tool", "name", def.Tool.Name)
		mcpServer.AddTool(def.Tool, r.handler(def.Tool.Name))
	}
}

func (r *Registry) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return r.dispatcher.Dispatch(ctx, name, req.GetArguments()), nil
	}
}

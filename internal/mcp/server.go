// Package mcpserver exposes the canvas to AI agents over the Model Context
// Protocol. Every tool goes through service.CanvasService, so agent edits and
// pointer edits share one state and one event stream.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canvas/internal/domain"
	"canvas/internal/logging"
	"canvas/internal/service"
)

// Server is the MCP server for the canvas.
// It exposes tools, resources, and prompts so AI agents can edit blocks.
type Server struct {
	mcp    *server.MCPServer
	canvas *service.CanvasService
	log    *slog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(canvas *service.CanvasService) *Server {
	s := &Server{
		canvas: canvas,
		log:    logging.WithComponent("mcp"),
	}

	s.mcp = server.NewMCPServer(
		"canvas-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBlockTools()
	s.registerContentTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// blockResult renders one block, or a plain message when the block is gone.
func (s *Server) blockResult(id string) (*mcp.CallToolResult, error) {
	b, err := s.canvas.Block(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func requireBlockID(args map[string]any) (string, error) {
	id, _ := args["blockId"].(string)
	if id == "" {
		return "", fmt.Errorf("blockId is required")
	}
	return id, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func requireFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func boolPtr(v bool) *bool { return &v }

// blockSummary is the compact listing shape for list_blocks.
type blockSummary struct {
	ID       string             `json:"id"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Content  domain.ContentKind `json:"content,omitempty"`
	Selected bool               `json:"selected,omitempty"`
}

package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const stateURI = "canvas://state"

func (s *Server) registerResources() {
	// ── canvas://state ─────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		stateURI,
		"Canvas State",
		mcp.WithMIMEType("application/json"),
	), s.handleStateResource)
}

func (s *Server) handleStateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.canvas.State(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      stateURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

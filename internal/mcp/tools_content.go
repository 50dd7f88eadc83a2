package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvas/internal/domain"
)

func (s *Server) registerContentTools() {
	// ── set_icon ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_icon",
		mcp.WithDescription("Replace a block's content with the icon"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleSetIcon)

	// ── set_text ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_text",
		mcp.WithDescription("Replace a block's content with text. Empty text leaves the block unchanged."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Text to show"), mcp.Required()),
	), s.handleSetText)

	// ── set_image ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_image",
		mcp.WithDescription("Replace a block's content with an image, from a local file path (encoded in the background) or a base64 data URI"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Absolute path of an image file")),
		mcp.WithString("dataUri", mcp.Description("data:<mime>;base64,<payload>")),
	), s.handleSetImage)

	// ── generate_table ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("generate_table",
		mcp.WithDescription("Ask the table generator for rows matching a prompt and put them in the block. Waits for the generator; on failure the block is unchanged."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("prompt", mcp.Description("What the table should contain"), mcp.Required()),
	), s.handleGenerateTable)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleSetIcon(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireBlockID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.canvas.SetIcon(id); err != nil {
		return nil, err
	}
	return s.blockResult(id)
}

func (s *Server) handleSetText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireBlockID(args)
	if err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)
	if err := s.canvas.SetText(id, text); err != nil {
		return nil, err
	}
	if text == "" {
		return textResult("Empty text, block unchanged"), nil
	}
	return s.blockResult(id)
}

func (s *Server) handleSetImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireBlockID(args)
	if err != nil {
		return nil, err
	}
	path, _ := args["path"].(string)
	dataURI, _ := args["dataUri"].(string)

	switch {
	case dataURI != "":
		if err := s.canvas.SetImageDataURI(id, dataURI); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Image set on block %s", id)), nil
	case path != "":
		if err := s.canvas.LoadImageFile(id, path); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Loading %s into block %s", path, id)), nil
	default:
		return nil, fmt.Errorf("either path or dataUri is required")
	}
}

func (s *Server) handleGenerateTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireBlockID(args)
	if err != nil {
		return nil, err
	}
	prompt, _ := args["prompt"].(string)
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if err := s.canvas.GenerateTable(ctx, id, prompt); err != nil {
		return nil, err
	}

	b, err := s.canvas.Block(id)
	if err != nil {
		// Deleted while the request was in flight.
		return textResult("Table generated, but the block no longer exists"), nil
	}
	table, _ := b.Content.(domain.TableContent)
	return jsonResult(map[string]any{
		"blockId": id,
		"columns": domain.Columns(table.Rows),
		"rows":    len(table.Rows),
	})
}

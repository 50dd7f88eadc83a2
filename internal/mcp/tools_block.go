package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvas/internal/domain"
)

func (s *Server) registerBlockTools() {
	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Add an empty block at the default position (100,100) with size 200x150"),
	), s.handleAddBlock)

	// ── place_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("place_block",
		mcp.WithDescription("Add an empty block. Position is auto-calculated on the grid if x/y are omitted."),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, default 200)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, default 150)")),
	), s.handlePlaceBlock)

	// ── draw_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("draw_block",
		mcp.WithDescription("Simulate a drag between two points. The block is created and selected only if both sides exceed 20 units."),
		mcp.WithNumber("fromX", mcp.Description("Drag start X"), mcp.Required()),
		mcp.WithNumber("fromY", mcp.Description("Drag start Y"), mcp.Required()),
		mcp.WithNumber("toX", mcp.Description("Drag end X"), mcp.Required()),
		mcp.WithNumber("toY", mcp.Description("Drag end Y"), mcp.Required()),
	), s.handleDrawBlock)

	// ── select_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block, bringing it on top and showing its toolbar"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleSelectBlock)

	// ── clear_selection ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Deselect the selected block"),
	), s.handleClearSelection)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to a new position on the canvas"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveBlock)

	// ── resize_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_block",
		mcp.WithDescription("Resize a block. Non-positive dimensions are ignored."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width")),
		mcp.WithNumber("height", mcp.Description("New height")),
	), s.handleResizeBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Copy a block, offset by (20,20), and select the copy"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleDuplicateBlock)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("DESTRUCTIVE: Delete a block"),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Lay all blocks out in rows on the grid"),
		mcp.WithNumber("startX", mcp.Description("Left edge of the layout (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Top edge of the layout (default 0)")),
	), s.handleArrangeBlocks)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks in render order, optionally filtered by content type"),
		mcp.WithString("content", mcp.Description("Filter by content: icon, text, image, table, empty (optional)")),
	), s.handleListBlocks)

	// ── get_toolbar ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_toolbar",
		mcp.WithDescription("Get the floating toolbar of the selected block: position and available actions"),
	), s.handleGetToolbar)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.canvas.AddDefaultBlock())
}

func (s *Server) handlePlaceBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	w := getFloat(args, "width", domain.DefaultBlockWidth)
	h := getFloat(args, "height", domain.DefaultBlockHeight)

	_, hasX := args["x"].(float64)
	_, hasY := args["y"].(float64)
	if !hasX || !hasY {
		return jsonResult(s.canvas.AutoPlaceBlock(w, h))
	}
	return jsonResult(s.canvas.PlaceBlock(getFloat(args, "x", 0), getFloat(args, "y", 0), w, h))
}

func (s *Server) handleDrawBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var pts [4]float64
	for i, key := range []string{"fromX", "fromY", "toX", "toY"} {
		v, err := requireFloat(args, key)
		if err != nil {
			return nil, err
		}
		pts[i] = v
	}

	b, ok := s.canvas.DrawBlock(domain.Point{X: pts[0], Y: pts[1]}, domain.Point{X: pts[2], Y: pts[3]})
	if !ok {
		return textResult("Gesture too small, no block created (both sides must exceed 20)"), nil
	}
	return jsonResult(b)
}

func (s *Server) handleSelectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireBlockID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.canvas.SelectBlock(id); err != nil {
		return nil, err
	}
	return jsonResult(s.canvas.Toolbar())
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.canvas.ClearSelection()
	return textResult("Selection cleared"), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireBlockID(args)
	if err != nil {
		return nil, err
	}
	block, err := s.canvas.Block(id)
	if err != nil {
		return nil, err
	}

	x := getFloat(args, "x", block.X)
	y := getFloat(args, "y", block.Y)
	if err := s.canvas.MoveBlock(id, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Block %s moved to (%.0f, %.0f)", id, x, y)), nil
}

func (s *Server) handleResizeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireBlockID(args)
	if err != nil {
		return nil, err
	}
	block, err := s.canvas.Block(id)
	if err != nil {
		return nil, err
	}

	w := getFloat(args, "width", block.Width)
	h := getFloat(args, "height", block.Height)
	if err := s.canvas.ResizeBlock(id, w, h); err != nil {
		return nil, err
	}
	return s.blockResult(id)
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireBlockID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	b, err := s.canvas.DuplicateBlock(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireBlockID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.canvas.DeleteBlock(id); err != nil {
		return nil, err
	}
	s.log.Info("block deleted by agent", "id", id)
	return textResult(fmt.Sprintf("Block %s deleted", id)), nil
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blocks := s.canvas.Arrange(getFloat(args, "startX", 0), getFloat(args, "startY", 0))
	return textResult(fmt.Sprintf("Arranged %d blocks", len(blocks))), nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, _ := req.GetArguments()["content"].(string)
	view := s.canvas.State()

	summaries := []blockSummary{}
	for _, id := range view.Order {
		b, _ := view.State.Block(id)
		var kind domain.ContentKind
		if b.Content != nil {
			kind = b.Content.Kind()
		}
		switch {
		case filter == "":
		case filter == "empty" && kind == "":
		case domain.ContentKind(filter) == kind:
		default:
			continue
		}
		summaries = append(summaries, blockSummary{
			ID:       b.ID,
			X:        b.X,
			Y:        b.Y,
			Width:    b.Width,
			Height:   b.Height,
			Content:  kind,
			Selected: b.ID == view.State.SelectedID,
		})
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetToolbar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tb := s.canvas.Toolbar()
	if tb == nil {
		return textResult("No block selected"), nil
	}
	return jsonResult(tb)
}

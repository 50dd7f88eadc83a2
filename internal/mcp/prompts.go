package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("table_board",
		mcp.WithPromptDescription("Build a board of generated tables, one block per subtopic"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic the tables should cover"),
			mcp.RequiredArgument(),
		),
	), s.handleTableBoardPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_canvas",
		mcp.WithPromptDescription("Review the canvas and clean up empty or overlapping blocks"),
	), s.handleTidyPrompt)
}

func (s *Server) handleTableBoardPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Create a table board for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a board about "%s" on the canvas. Follow these steps:

1. Use place_block with width 480 and height 200 and set_text to add a title block: "%s"
2. Pick three subtopics. For each one, place_block and then generate_table with a prompt describing the rows you want
3. If generate_table fails, leave that block with set_text explaining what was missing
4. Finish with arrange_blocks so the title sits first

Check canvas://state at the end to confirm every block has content.`, topic, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Tidy the canvas",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Tidy the canvas. Follow these steps:

1. Use list_blocks with content "empty" to find blocks without content
2. Delete empty blocks that are not needed, or give them an icon with set_icon
3. Run arrange_blocks to remove overlaps`,
				},
			},
		},
	}, nil
}

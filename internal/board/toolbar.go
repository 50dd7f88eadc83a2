package board

import (
	"math"

	"canvas/internal/domain"
)

// ToolbarGap is how far above the selected block the toolbar sits.
const ToolbarGap = 44.0

// Action is a toolbar button.
type Action string

const (
	ActionIcon      Action = "icon"
	ActionText      Action = "text"
	ActionImage     Action = "image"
	ActionTable     Action = "table"
	ActionDuplicate Action = "duplicate"
	ActionDelete    Action = "delete"
)

// ToolbarView is the floating toolbar for the selected block.
type ToolbarView struct {
	BlockID string   `json:"blockId"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Actions []Action `json:"actions"`
}

// Toolbar derives the toolbar from the state. Nil when nothing is selected.
func Toolbar(s domain.CanvasState, v domain.Variant) *ToolbarView {
	b, ok := s.Selected()
	if !ok {
		return nil
	}
	actions := []Action{ActionIcon, ActionText}
	if v.Supports(domain.ContentImage) {
		actions = append(actions, ActionImage)
	}
	if v.Supports(domain.ContentTable) {
		actions = append(actions, ActionTable)
	}
	actions = append(actions, ActionDuplicate, ActionDelete)

	return &ToolbarView{
		BlockID: b.ID,
		X:       b.X,
		Y:       math.Max(0, b.Y-ToolbarGap),
		Actions: actions,
	}
}

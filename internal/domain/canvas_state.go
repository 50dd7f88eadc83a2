package domain

// CanvasState is the complete UI state of the canvas. It is treated as an
// immutable value: transitions build a new state and never modify Blocks in place.
type CanvasState struct {
	Blocks      []Block      `json:"blocks"`
	SelectedID  string       `json:"selectedId"` // "" when nothing is selected
	Drawing     *Gesture     `json:"drawing"`
	TableDialog *TableDialog `json:"tableDialog"`
}

// Gesture is an in-progress draw drag.
type Gesture struct {
	Anchor  Point `json:"anchor"`
	Current Point `json:"current"`
}

// Preview is the rectangle the gesture would commit.
func (g Gesture) Preview() Rect {
	return RectFromPoints(g.Anchor, g.Current)
}

// TableDialog is the open prompt dialog for table generation.
type TableDialog struct {
	BlockID   string `json:"blockId"`
	RequestID string `json:"requestId"` // set while a request is in flight
	Pending   bool   `json:"pending"`
}

// Block returns the block with the given id.
func (s CanvasState) Block(id string) (Block, bool) {
	for _, b := range s.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Selected returns the selected block, if any.
func (s CanvasState) Selected() (Block, bool) {
	if s.SelectedID == "" {
		return Block{}, false
	}
	return s.Block(s.SelectedID)
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Default placement for blocks created with the "add block" action.
const (
	DefaultBlockX      = 100.0
	DefaultBlockY      = 100.0
	DefaultBlockWidth  = 200.0
	DefaultBlockHeight = 150.0

	// DuplicateOffset is applied to both axes when a block is duplicated.
	DuplicateOffset = 20.0
)

var (
	ErrBlockNotFound      = errors.New("block not found")
	ErrUnsupportedContent = errors.New("content type not supported by this canvas variant")
)

// Block is a rectangle on the canvas surface. Coordinates are surface-local.
// A nil Content renders as an empty placeholder.
type Block struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Content Content `json:"content"`
}

// Rect returns the block's bounding box.
func (b Block) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// BlockPatch is a partial update of a block's geometry. Nil fields are left alone.
type BlockPatch struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// MoveTo builds a patch that only changes position.
func MoveTo(x, y float64) BlockPatch {
	return BlockPatch{X: &x, Y: &y}
}

// ResizeTo builds a patch that only changes size.
func ResizeTo(w, h float64) BlockPatch {
	return BlockPatch{Width: &w, Height: &h}
}

// Apply merges the patch into b. Non-positive sizes are ignored so a committed
// block never ends up with an empty extent.
func (p BlockPatch) Apply(b Block) Block {
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	if p.Width != nil && *p.Width > 0 {
		b.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		b.Height = *p.Height
	}
	return b
}

type blockJSON struct {
	ID      string          `json:"id"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Content json.RawMessage `json:"content"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := DecodeContent(raw.Content)
	if err != nil {
		return fmt.Errorf("block %s: %w", raw.ID, err)
	}
	*b = Block{
		ID:      raw.ID,
		X:       raw.X,
		Y:       raw.Y,
		Width:   raw.Width,
		Height:  raw.Height,
		Content: content,
	}
	return nil
}

// Package board holds the canvas state transitions. Every function takes a
// CanvasState and returns the next one; none of them mutate their input, so the
// caller can publish a state while computing the following one.
//
// Operations that target a block by id are no-ops when the id is unknown.
package board

import (
	"github.com/samber/lo"

	"canvas/internal/domain"
)

// Has reports whether a block with the given id exists.
func Has(s domain.CanvasState, id string) bool {
	return lo.ContainsBy(s.Blocks, func(b domain.Block) bool { return b.ID == id })
}

// Append adds b at the end of the registry. A block whose id is already taken
// or whose size is not positive is dropped.
func Append(s domain.CanvasState, b domain.Block) domain.CanvasState {
	if b.ID == "" || b.Width <= 0 || b.Height <= 0 || Has(s, b.ID) {
		return s
	}
	next := make([]domain.Block, len(s.Blocks), len(s.Blocks)+1)
	copy(next, s.Blocks)
	s.Blocks = append(next, b)
	return s
}

// AddDefault appends a block at the default position and size.
func AddDefault(s domain.CanvasState, id string) domain.CanvasState {
	return Append(s, domain.Block{
		ID:     id,
		X:      domain.DefaultBlockX,
		Y:      domain.DefaultBlockY,
		Width:  domain.DefaultBlockWidth,
		Height: domain.DefaultBlockHeight,
	})
}

// Remove deletes the block and clears selection if it was the selected one.
// The table dialog is closed when it belonged to the removed block.
func Remove(s domain.CanvasState, id string) domain.CanvasState {
	if !Has(s, id) {
		return s
	}
	s.Blocks = lo.Filter(s.Blocks, func(b domain.Block, _ int) bool { return b.ID != id })
	if s.SelectedID == id {
		s.SelectedID = ""
	}
	if s.TableDialog != nil && s.TableDialog.BlockID == id {
		s.TableDialog = nil
	}
	return s
}

// Update merges a geometry patch into the block.
func Update(s domain.CanvasState, id string, patch domain.BlockPatch) domain.CanvasState {
	return mapBlock(s, id, patch.Apply)
}

// ReplaceContent swaps the block's content wholesale. Nothing is merged.
func ReplaceContent(s domain.CanvasState, id string, c domain.Content) domain.CanvasState {
	return mapBlock(s, id, func(b domain.Block) domain.Block {
		b.Content = c
		return b
	})
}

// Duplicate appends a copy of the source block under newID, shifted by
// DuplicateOffset on both axes, and selects it.
func Duplicate(s domain.CanvasState, id, newID string) domain.CanvasState {
	src, ok := s.Block(id)
	if !ok || Has(s, newID) {
		return s
	}
	dup := src
	dup.ID = newID
	dup.X += domain.DuplicateOffset
	dup.Y += domain.DuplicateOffset
	if src.Content != nil {
		dup.Content = src.Content.Clone()
	}
	s = Append(s, dup)
	s.SelectedID = newID
	return s
}

// RenderOrder returns the blocks in paint order: registry order with the
// selected block moved last so it is drawn on top.
func RenderOrder(s domain.CanvasState) []domain.Block {
	sel, ok := s.Selected()
	if !ok {
		return append([]domain.Block(nil), s.Blocks...)
	}
	out := lo.Filter(s.Blocks, func(b domain.Block, _ int) bool { return b.ID != sel.ID })
	return append(out, sel)
}

func mapBlock(s domain.CanvasState, id string, fn func(domain.Block) domain.Block) domain.CanvasState {
	_, idx, ok := lo.FindIndexOf(s.Blocks, func(b domain.Block) bool { return b.ID == id })
	if !ok {
		return s
	}
	next := make([]domain.Block, len(s.Blocks))
	copy(next, s.Blocks)
	next[idx] = fn(next[idx])
	s.Blocks = next
	return s
}

package board

import "canvas/internal/domain"

// MinDrawSize is the threshold a drawn rectangle must strictly exceed on
// both axes to be committed.
const MinDrawSize = 20.0

// Drawing reports whether a draw gesture is in progress.
func Drawing(s domain.CanvasState) bool {
	return s.Drawing != nil
}

// BeginDraw starts a gesture anchored at p and clears the selection.
func BeginDraw(s domain.CanvasState, p domain.Point) domain.CanvasState {
	s.Drawing = &domain.Gesture{Anchor: p, Current: p}
	s.SelectedID = ""
	return s
}

// MoveDraw updates the gesture's current point. No-op when idle.
func MoveDraw(s domain.CanvasState, p domain.Point) domain.CanvasState {
	if s.Drawing == nil {
		return s
	}
	g := *s.Drawing
	g.Current = p
	s.Drawing = &g
	return s
}

// EndDraw finishes the gesture. When the preview exceeds MinDrawSize on both
// axes it is committed as a block under newID and selected; otherwise it is
// discarded. Drawing state is cleared either way.
func EndDraw(s domain.CanvasState, newID string) domain.CanvasState {
	if s.Drawing == nil {
		return s
	}
	r := s.Drawing.Preview()
	s.Drawing = nil
	if !Committable(r) {
		return s
	}
	s = Append(s, domain.Block{ID: newID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	if Has(s, newID) {
		s.SelectedID = newID
	}
	return s
}

// CancelDraw drops the gesture without side effects.
func CancelDraw(s domain.CanvasState) domain.CanvasState {
	s.Drawing = nil
	return s
}

// Committable reports whether r is large enough to become a block.
func Committable(r domain.Rect) bool {
	return r.Width > MinDrawSize && r.Height > MinDrawSize
}

// Select makes id the selected block. Unknown ids leave the state unchanged.
func Select(s domain.CanvasState, id string) domain.CanvasState {
	if !Has(s, id) {
		return s
	}
	s.SelectedID = id
	return s
}

// ClearSelection deselects whatever is selected.
func ClearSelection(s domain.CanvasState) domain.CanvasState {
	s.SelectedID = ""
	return s
}

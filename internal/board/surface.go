package board

import "canvas/internal/domain"

// Target classifies what a pointer-down landed on.
type Target string

const (
	TargetUnknown Target = ""
	TargetSurface Target = "surface"
	TargetBlock   Target = "block"
	TargetControl Target = "control" // button, input, toolbar
)

// PointerEvent is a raw pointer event in viewport coordinates.
// BlockID is set when Target is TargetBlock.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	Target  Target  `json:"target"`
	BlockID string  `json:"blockId"`
}

// Surface is the interactive area. Origin is the top-left of its bounding box
// in viewport coordinates.
type Surface struct {
	Origin domain.Point `json:"origin"`
}

// ToLocal converts viewport coordinates to surface-local coordinates.
func (sf Surface) ToLocal(clientX, clientY float64) domain.Point {
	return domain.Point{X: clientX - sf.Origin.X, Y: clientY - sf.Origin.Y}
}

// PointerDown routes a pointer-down. Controls keep the event for themselves, a
// block selects itself without starting a gesture, and empty surface starts a draw.
// An unclassified event is resolved by hit testing.
func (sf Surface) PointerDown(s domain.CanvasState, ev PointerEvent) domain.CanvasState {
	p := sf.ToLocal(ev.ClientX, ev.ClientY)
	target, blockID := ev.Target, ev.BlockID
	if target == TargetUnknown {
		if id, ok := HitTest(s, p); ok {
			target, blockID = TargetBlock, id
		} else {
			target = TargetSurface
		}
	}

	switch target {
	case TargetControl:
		return s
	case TargetBlock:
		return Select(s, blockID)
	default:
		return BeginDraw(s, p)
	}
}

// PointerMove forwards a move to the gesture in progress.
func (sf Surface) PointerMove(s domain.CanvasState, clientX, clientY float64) domain.CanvasState {
	return MoveDraw(s, sf.ToLocal(clientX, clientY))
}

// PointerUp finishes the gesture in progress. newID names the block that is
// committed if the gesture is large enough.
func (sf Surface) PointerUp(s domain.CanvasState, clientX, clientY float64, newID string) domain.CanvasState {
	if s.Drawing == nil {
		return s
	}
	s = MoveDraw(s, sf.ToLocal(clientX, clientY))
	return EndDraw(s, newID)
}

// HitTest returns the topmost block under p, honouring render order.
func HitTest(s domain.CanvasState, p domain.Point) (string, bool) {
	order := RenderOrder(s)
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].Rect().Contains(p) {
			return order[i].ID, true
		}
	}
	return "", false
}

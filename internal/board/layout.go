package board

import (
	"math"

	"canvas/internal/domain"
)

const (
	GridSize = 30.0
	Padding  = 60.0 // 2 grid cells between blocks
	MaxRowW  = 1800.0
)

// LayoutEngine places blocks on the canvas without overlapping existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the first free grid position for a block of size (w, h),
// scanning rows top-to-bottom and columns left-to-right.
func (le *LayoutEngine) NextPosition(existing []domain.Block, w, h float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	padded := make([]domain.Rect, len(existing))
	for i, b := range existing {
		padded[i] = domain.Rect{
			X:      b.X - le.padding,
			Y:      b.Y - le.padding,
			Width:  b.Width + le.padding*2,
			Height: b.Height + le.padding*2,
		}
	}

	candidate := domain.Rect{Width: w, Height: h}
	for y := 0.0; y < 100000; y += le.gridSize {
		for x := 0.0; x < le.maxRowW; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range padded {
				if candidate.Intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: below everything
	maxY := 0.0
	for _, b := range existing {
		maxY = math.Max(maxY, b.Y+b.Height)
	}
	return 0, le.snap(maxY + le.padding)
}

// ArrangeGroup lays the blocks out in rows starting at (startX, startY) and
// returns one move patch per block, keyed by id.
func (le *LayoutEngine) ArrangeGroup(blocks []domain.Block, startX, startY float64) map[string]domain.BlockPatch {
	patches := make(map[string]domain.BlockPatch, len(blocks))
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for _, b := range blocks {
		patches[b.ID] = domain.MoveTo(x, y)
		rowHeight = math.Max(rowHeight, b.Height)

		x += le.snap(b.Width + le.padding)

		// Wrap to next row
		if x+b.Width > le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
	}
	return patches
}

// Arrange applies ArrangeGroup to every block in the registry.
func Arrange(s domain.CanvasState, le *LayoutEngine, startX, startY float64) domain.CanvasState {
	for id, patch := range le.ArrangeGroup(s.Blocks, startX, startY) {
		s = Update(s, id, patch)
	}
	return s
}

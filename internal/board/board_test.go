package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas/internal/domain"
)

func draw(s domain.CanvasState, from, to domain.Point, id string) domain.CanvasState {
	s = BeginDraw(s, from)
	s = MoveDraw(s, to)
	return EndDraw(s, id)
}

func TestDraw_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		to     domain.Point
		commit bool
	}{
		{"20x21 rejected", domain.Point{X: 20, Y: 21}, false},
		{"21x20 rejected", domain.Point{X: 21, Y: 20}, false},
		{"21x21 accepted", domain.Point{X: 21, Y: 21}, true},
		{"click without drag", domain.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := draw(domain.CanvasState{}, domain.Point{}, tt.to, "new")
			assert.Nil(t, s.Drawing)
			if !tt.commit {
				assert.Empty(t, s.Blocks)
				assert.Empty(t, s.SelectedID)
				return
			}
			require.Len(t, s.Blocks, 1)
			assert.Equal(t, "new", s.SelectedID)
		})
	}
}

func TestDraw_NormalizesDirection(t *testing.T) {
	s := draw(domain.CanvasState{}, domain.Point{X: 150, Y: 150}, domain.Point{X: 50, Y: 80}, "b")

	require.Len(t, s.Blocks, 1)
	assert.Equal(t, domain.Block{ID: "b", X: 50, Y: 80, Width: 100, Height: 70}, s.Blocks[0])
}

func TestBeginDraw_ClearsSelection(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	s = Select(s, "a")

	s = BeginDraw(s, domain.Point{X: 500, Y: 500})
	assert.Empty(t, s.SelectedID)
	require.NotNil(t, s.Drawing)

	// too small: discarded, previous selection stays cleared
	s = EndDraw(s, "tiny")
	assert.Len(t, s.Blocks, 1)
	assert.Empty(t, s.SelectedID)
}

func TestMoveAndEnd_IdleAreNoops(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	assert.Equal(t, s, MoveDraw(s, domain.Point{X: 9, Y: 9}))
	assert.Equal(t, s, EndDraw(s, "x"))
}

func TestSurface_PointerRouting(t *testing.T) {
	sf := Surface{Origin: domain.Point{X: 10, Y: 20}}
	s := AddDefault(domain.CanvasState{}, "a")

	// controls swallow the event
	got := sf.PointerDown(s, PointerEvent{ClientX: 400, ClientY: 400, Target: TargetControl})
	assert.Nil(t, got.Drawing)

	// explicit block target selects without drawing
	got = sf.PointerDown(s, PointerEvent{ClientX: 400, ClientY: 400, Target: TargetBlock, BlockID: "a"})
	assert.Equal(t, "a", got.SelectedID)
	assert.Nil(t, got.Drawing)

	// unclassified point over the block hit-tests to it
	got = sf.PointerDown(s, PointerEvent{ClientX: 150, ClientY: 150})
	assert.Equal(t, "a", got.SelectedID)
	assert.Nil(t, got.Drawing)

	// empty area starts a gesture in local coordinates
	got = sf.PointerDown(s, PointerEvent{ClientX: 610, ClientY: 620, Target: TargetSurface})
	require.NotNil(t, got.Drawing)
	assert.Equal(t, domain.Point{X: 600, Y: 600}, got.Drawing.Anchor)

	got = sf.PointerMove(got, 660, 700)
	got = sf.PointerUp(got, 710, 720, "drawn")
	b, ok := got.Block("drawn")
	require.True(t, ok)
	assert.Equal(t, domain.Rect{X: 600, Y: 600, Width: 100, Height: 100}, b.Rect())
}

func TestHitTest_SelectedOnTop(t *testing.T) {
	s := Append(domain.CanvasState{}, domain.Block{ID: "under", X: 0, Y: 0, Width: 100, Height: 100})
	s = Append(s, domain.Block{ID: "over", X: 50, Y: 50, Width: 100, Height: 100})

	id, ok := HitTest(s, domain.Point{X: 75, Y: 75})
	require.True(t, ok)
	assert.Equal(t, "over", id)

	s = Select(s, "under")
	id, _ = HitTest(s, domain.Point{X: 75, Y: 75})
	assert.Equal(t, "under", id)

	_, ok = HitTest(s, domain.Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestRemove_Selection(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	s = AddDefault(s, "b")
	s = Select(s, "a")

	other := Remove(s, "b")
	assert.Equal(t, "a", other.SelectedID)
	assert.Len(t, other.Blocks, 1)

	self := Remove(s, "a")
	assert.Empty(t, self.SelectedID)
	assert.Len(t, self.Blocks, 1)

	// input state untouched
	assert.Len(t, s.Blocks, 2)
}

func TestRegistry_DoesNotAliasInput(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	s = AddDefault(s, "b")
	before := append([]domain.Block(nil), s.Blocks...)

	next := Update(s, "a", domain.MoveTo(1, 2))
	next = ReplaceContent(next, "b", domain.TextContent{Text: "x"})

	assert.Equal(t, before, s.Blocks)
	assert.Equal(t, []string{"a", "b"}, []string{next.Blocks[0].ID, next.Blocks[1].ID})
	assert.Equal(t, 1.0, next.Blocks[0].X)
}

func TestRegistry_UnknownIDIsNoop(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")

	assert.Equal(t, s, Update(s, "missing", domain.MoveTo(1, 1)))
	assert.Equal(t, s, SetImage(s, "missing", "data:x"))
	assert.Equal(t, s, Remove(s, "missing"))
	assert.Equal(t, s, Duplicate(s, "missing", "c"))
	assert.Equal(t, s, Select(s, "missing"))
}

func TestAppend_RejectsDuplicateIDAndEmptySize(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	assert.Len(t, AddDefault(s, "a").Blocks, 1)
	assert.Len(t, Append(s, domain.Block{ID: "z", Width: 0, Height: 10}).Blocks, 1)
}

func TestContent_ReplacedNotMerged(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	s = SetIcon(s, "a")
	s = SetText(s, "a", "hello")

	b, _ := s.Block("a")
	assert.Equal(t, domain.TextContent{Text: "hello"}, b.Content)
}

func TestSetText_EmptyLeavesContent(t *testing.T) {
	s := SetIcon(AddDefault(domain.CanvasState{}, "a"), "a")
	assert.Equal(t, s, SetText(s, "a", ""))
}

func TestScenario_DefaultIconDuplicate(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "first")
	b, _ := s.Block("first")
	assert.Equal(t, domain.Rect{X: 100, Y: 100, Width: 200, Height: 150}, b.Rect())

	s = SetIcon(s, "first")
	b, _ = s.Block("first")
	assert.Equal(t, domain.IconContent{Symbol: domain.DefaultIcon}, b.Content)

	s = Duplicate(s, "first", "second")
	require.Len(t, s.Blocks, 2)
	dup := s.Blocks[1]
	assert.Equal(t, "second", dup.ID)
	assert.Equal(t, domain.Rect{X: 120, Y: 120, Width: 200, Height: 150}, dup.Rect())
	assert.Equal(t, b.Content, dup.Content)
	assert.Equal(t, "second", s.SelectedID)

	src, _ := s.Block("first")
	assert.Equal(t, b, src)
}

func TestRenderOrder_SelectedLast(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	s = AddDefault(s, "b")
	s = AddDefault(s, "c")

	ids := func(bs []domain.Block) []string {
		out := make([]string, len(bs))
		for i, b := range bs {
			out[i] = b.ID
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(RenderOrder(s)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(RenderOrder(Select(s, "a"))))
}

func TestToolbar(t *testing.T) {
	s := AddDefault(domain.CanvasState{}, "a")
	assert.Nil(t, Toolbar(s, domain.VariantFull))

	s = Select(s, "a")
	full := Toolbar(s, domain.VariantFull)
	require.NotNil(t, full)
	assert.Equal(t, 100.0, full.X)
	assert.Equal(t, 100.0-ToolbarGap, full.Y)
	assert.Equal(t, []Action{ActionIcon, ActionText, ActionImage, ActionTable, ActionDuplicate, ActionDelete}, full.Actions)

	basic := Toolbar(s, domain.VariantBasic)
	assert.Equal(t, []Action{ActionIcon, ActionText, ActionDuplicate, ActionDelete}, basic.Actions)

	s = Update(s, "a", domain.MoveTo(0, 10))
	assert.Equal(t, 0.0, Toolbar(s, domain.VariantFull).Y)
}

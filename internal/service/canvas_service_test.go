package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas/internal/board"
	"canvas/internal/domain"
	"canvas/internal/service"
	"canvas/internal/tablegen"
)

// fakeGenerator answers each Generate with the next queued result. When
// gate is set, Generate blocks until it receives.
type fakeGenerator struct {
	rows    []*domain.Row
	err     error
	gate    chan struct{}
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) ([]*domain.Row, error) {
	f.prompts = append(f.prompts, prompt)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.rows, f.err
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, opts service.Options) (*service.CanvasService, *service.MockEmitter) {
	t.Helper()
	em := &service.MockEmitter{}
	opts.Emitter = em
	if opts.NewID == nil {
		opts.NewID = seqIDs()
	}
	return service.NewCanvasService(context.Background(), opts), em
}

func waitJobs(t *testing.T, svc *service.CanvasService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Wait(ctx))
}

func TestCanvasService_AddIconDuplicateScenario(t *testing.T) {
	svc, em := newService(t, service.Options{})

	b := svc.AddDefaultBlock()
	assert.Equal(t, 100.0, b.X)
	assert.Equal(t, 100.0, b.Y)
	assert.Equal(t, 200.0, b.Width)
	assert.Equal(t, 150.0, b.Height)

	require.NoError(t, svc.SetIcon(b.ID))
	dup, err := svc.DuplicateBlock(b.ID)
	require.NoError(t, err)

	assert.NotEqual(t, b.ID, dup.ID)
	assert.Equal(t, 120.0, dup.X)
	assert.Equal(t, 120.0, dup.Y)
	assert.Equal(t, domain.NewIcon(), dup.Content)

	view := svc.State()
	assert.Equal(t, dup.ID, view.State.SelectedID)
	assert.Equal(t, []string{b.ID, dup.ID}, view.Order)
	require.NotNil(t, view.Toolbar)
	assert.Equal(t, 76.0, view.Toolbar.Y)

	changes := em.Named(service.EventCanvasChanged)
	require.Len(t, changes, 3)
	last := changes[2].Data.(service.CanvasView)
	assert.Len(t, last.State.Blocks, 2)
}

func TestCanvasService_PointerGesture(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	svc.SetSurfaceOrigin(10, 20)

	svc.PointerDown(board.PointerEvent{ClientX: 160, ClientY: 170, Target: board.TargetSurface})
	view := svc.PointerMove(90, 120)
	require.NotNil(t, view.State.Drawing)
	assert.Equal(t, domain.Rect{X: 80, Y: 100, Width: 70, Height: 50}, view.State.Drawing.Preview())

	view = svc.PointerUp(60, 100)
	assert.Nil(t, view.State.Drawing)
	require.Len(t, view.State.Blocks, 1)
	got := view.State.Blocks[0]
	assert.Equal(t, domain.Rect{X: 50, Y: 80, Width: 100, Height: 70}, got.Rect())
	assert.Equal(t, got.ID, view.State.SelectedID)
}

func TestCanvasService_PointerIdleIsNoop(t *testing.T) {
	svc, em := newService(t, service.Options{})
	svc.PointerMove(50, 50)
	svc.PointerUp(50, 50)
	assert.Empty(t, em.Events)
	assert.Empty(t, svc.State().State.Blocks)
}

func TestCanvasService_SmallDrawDiscarded(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	_, ok := svc.DrawBlock(domain.Point{X: 0, Y: 0}, domain.Point{X: 20, Y: 21})
	assert.False(t, ok)
	b, ok := svc.DrawBlock(domain.Point{X: 0, Y: 0}, domain.Point{X: 21, Y: 21})
	assert.True(t, ok)
	assert.Equal(t, 21.0, b.Width)
	assert.Len(t, svc.Blocks(), 1)
}

func TestCanvasService_UnknownIDs(t *testing.T) {
	svc, em := newService(t, service.Options{})

	for name, err := range map[string]error{
		"select":    svc.SelectBlock("ghost"),
		"move":      svc.MoveBlock("ghost", 1, 2),
		"resize":    svc.ResizeBlock("ghost", 30, 30),
		"icon":      svc.SetIcon("ghost"),
		"text":      svc.SetText("ghost", "hi"),
		"delete":    svc.DeleteBlock("ghost"),
		"dialog":    svc.OpenTableDialog("ghost"),
		"loadImage": svc.LoadImageFile("ghost", "/tmp/x.png"),
	} {
		assert.ErrorIs(t, err, domain.ErrBlockNotFound, name)
	}
	_, err := svc.DuplicateBlock("ghost")
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
	_, err = svc.Block("ghost")
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
	assert.Empty(t, em.Events, "failed operations publish nothing")
}

func TestCanvasService_DeleteSelection(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	a := svc.AddDefaultBlock()
	b := svc.PlaceBlock(400, 400, 50, 50)

	require.NoError(t, svc.SelectBlock(a.ID))
	require.NoError(t, svc.DeleteBlock(b.ID))
	assert.Equal(t, a.ID, svc.State().State.SelectedID)

	require.NoError(t, svc.DeleteBlock(a.ID))
	view := svc.State()
	assert.Empty(t, view.State.SelectedID)
	assert.Nil(t, view.Toolbar)
}

func TestCanvasService_TextAndGeometry(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	require.NoError(t, svc.SetText(b.ID, "first"))
	require.NoError(t, svc.SetText(b.ID, "second"))
	require.NoError(t, svc.SetText(b.ID, ""))
	got, err := svc.Block(b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TextContent{Text: "second"}, got.Content)

	require.NoError(t, svc.MoveBlock(b.ID, 5, 6))
	require.NoError(t, svc.ResizeBlock(b.ID, 0, 80))
	got, _ = svc.Block(b.ID)
	assert.Equal(t, domain.Rect{X: 5, Y: 6, Width: 200, Height: 80}, got.Rect())
}

func TestCanvasService_PlaceDefaultsAndAutoPlace(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	b := svc.PlaceBlock(10, 10, 0, -5)
	assert.Equal(t, domain.DefaultBlockWidth, b.Width)
	assert.Equal(t, domain.DefaultBlockHeight, b.Height)

	auto := svc.AutoPlaceBlock(100, 100)
	got, err := svc.Block(auto.ID)
	require.NoError(t, err)
	assert.False(t, got.Rect().Intersects(b.Rect()), "auto placement avoids existing blocks")
}

func TestCanvasService_BasicVariantRejectsRichContent(t *testing.T) {
	svc, _ := newService(t, service.Options{Variant: domain.VariantBasic, Generator: &fakeGenerator{}})
	b := svc.AddDefaultBlock()

	assert.ErrorIs(t, svc.SetImageDataURI(b.ID, "data:image/png;base64,AAAA"), domain.ErrUnsupportedContent)
	assert.ErrorIs(t, svc.LoadImageFile(b.ID, "/tmp/x.png"), domain.ErrUnsupportedContent)
	assert.ErrorIs(t, svc.OpenTableDialog(b.ID), domain.ErrUnsupportedContent)
	assert.ErrorIs(t, svc.GenerateTable(context.Background(), b.ID, "cities"), domain.ErrUnsupportedContent)

	require.NoError(t, svc.SelectBlock(b.ID))
	tb := svc.Toolbar()
	require.NotNil(t, tb)
	assert.NotContains(t, tb.Actions, board.ActionImage)
	assert.NotContains(t, tb.Actions, board.ActionTable)

	svc.SetVariant(domain.VariantFull)
	assert.Contains(t, svc.Toolbar().Actions, board.ActionTable)
}

func TestCanvasService_SetImageDataURI(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	assert.Error(t, svc.SetImageDataURI(b.ID, "not a data uri"))
	require.NoError(t, svc.SetImageDataURI(b.ID, "data:image/png;base64,iVBORw0KGgo="))
	got, _ := svc.Block(b.ID)
	assert.Equal(t, domain.ImageContent{DataURI: "data:image/png;base64,iVBORw0KGgo="}, got.Content)
}

func TestCanvasService_LoadImageFile(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	path := filepath.Join(t.TempDir(), "pixel.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(path, png, 0644))

	require.NoError(t, svc.LoadImageFile(b.ID, path))
	waitJobs(t, svc)

	got, _ := svc.Block(b.ID)
	img, ok := got.Content.(domain.ImageContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(img.DataURI, "data:image/png;base64,"), img.DataURI)

	assert.NoError(t, svc.LoadImageFile(b.ID, ""), "cancelled dialog is silent")
}

func TestCanvasService_LoadImageFileError(t *testing.T) {
	svc, em := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	require.NoError(t, svc.LoadImageFile(b.ID, filepath.Join(t.TempDir(), "missing.png")))
	waitJobs(t, svc)

	got, _ := svc.Block(b.ID)
	assert.Nil(t, got.Content)
	errs := em.Named(service.EventCanvasError)
	require.Len(t, errs, 1)
	assert.Equal(t, "image", errs[0].Data.(service.ErrorEvent).Operation)
}

func TestCanvasService_EmptyCanvasSerializesBlocksArray(t *testing.T) {
	svc, em := newService(t, service.Options{})

	raw, err := json.Marshal(svc.State())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"blocks":[]`)

	svc.PointerDown(board.PointerEvent{ClientX: 10, ClientY: 10, Target: board.TargetSurface})
	require.NotEmpty(t, em.Events)
	raw, err = json.Marshal(em.Events[len(em.Events)-1].Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"blocks":[]`)
	assert.Contains(t, string(raw), `"drawing":{`)

	b := svc.AddDefaultBlock()
	require.NoError(t, svc.DeleteBlock(b.ID))
	raw, err = json.Marshal(svc.State())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"blocks":[]`)
}

func TestCanvasService_LoadImageFileAcceptsAnything(t *testing.T) {
	svc, em := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	path := filepath.Join(t.TempDir(), "notes.txt")
	big := strings.Repeat("not an image at all\n", 1<<16)
	require.NoError(t, os.WriteFile(path, []byte(big), 0644))

	require.NoError(t, svc.LoadImageFile(b.ID, path))
	waitJobs(t, svc)

	assert.Empty(t, em.Named(service.EventCanvasError))
	got, _ := svc.Block(b.ID)
	img, ok := got.Content.(domain.ImageContent)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(img.DataURI, "data:text/plain;base64,"), img.DataURI[:40])
}

func TestCanvasService_ShutdownRefusesNewJobs(t *testing.T) {
	rows := []*domain.Row{domain.NewRow(domain.Cell{Column: "n", Value: 1.0})}
	gen := &fakeGenerator{rows: rows, gate: make(chan struct{})}
	svc, _ := newService(t, service.Options{Generator: gen})
	b := svc.AddDefaultBlock()

	pending := make(chan error, 1)
	go func() { pending <- svc.GenerateTable(context.Background(), b.ID, "fruit") }()
	require.Eventually(t, func() bool { return len(svc.Running()) == 1 }, time.Second, 5*time.Millisecond)

	shut := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		shut <- svc.Shutdown(ctx)
	}()

	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0644))
	require.Eventually(t, func() bool {
		return errors.Is(svc.LoadImageFile(b.ID, path), service.ErrShuttingDown)
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, svc.GenerateTable(context.Background(), b.ID, "more"), service.ErrShuttingDown)

	close(gen.gate)
	require.NoError(t, <-pending)
	require.NoError(t, <-shut)
	assert.Empty(t, svc.Running())

	// synchronous edits still apply
	require.NoError(t, svc.SetText(b.ID, "after"))
	got, _ := svc.Block(b.ID)
	assert.Equal(t, domain.TextContent{Text: "after"}, got.Content)
}

func TestCanvasService_GenerateTableSuccess(t *testing.T) {
	rows := []*domain.Row{domain.NewRow(domain.Cell{Column: "city", Value: "Oslo"})}
	gen := &fakeGenerator{rows: rows}
	svc, _ := newService(t, service.Options{Generator: gen})
	b := svc.AddDefaultBlock()

	require.NoError(t, svc.OpenTableDialog(b.ID))
	require.NoError(t, svc.GenerateTable(context.Background(), b.ID, "  nordic cities "))

	assert.Equal(t, []string{"nordic cities"}, gen.prompts)
	view := svc.State()
	assert.Nil(t, view.State.TableDialog)
	got, _ := view.State.Block(b.ID)
	table, ok := got.Content.(domain.TableContent)
	require.True(t, ok)
	assert.Equal(t, []string{"city"}, domain.Columns(table.Rows))
}

func TestCanvasService_GenerateTableFailure(t *testing.T) {
	gen := &fakeGenerator{err: &tablegen.StatusError{StatusCode: 502}}
	svc, em := newService(t, service.Options{Generator: gen})
	b := svc.AddDefaultBlock()
	require.NoError(t, svc.SetText(b.ID, "keep me"))
	require.NoError(t, svc.OpenTableDialog(b.ID))

	err := svc.GenerateTable(context.Background(), b.ID, "cities")
	var se *tablegen.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 502, se.StatusCode)

	view := svc.State()
	got, _ := view.State.Block(b.ID)
	assert.Equal(t, domain.TextContent{Text: "keep me"}, got.Content)
	require.NotNil(t, view.State.TableDialog, "dialog stays open")
	assert.False(t, view.State.TableDialog.Pending)
	assert.Len(t, em.Named(service.EventCanvasError), 1)
}

func TestCanvasService_GenerateTableEmptyPromptAndNoGenerator(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	b := svc.AddDefaultBlock()

	assert.NoError(t, svc.GenerateTable(context.Background(), b.ID, "   "))
	assert.ErrorIs(t, svc.GenerateTable(context.Background(), b.ID, "cities"), service.ErrGeneratorUnavailable)

	svc.SetGenerator(&fakeGenerator{rows: []*domain.Row{}})
	require.NoError(t, svc.GenerateTable(context.Background(), b.ID, "cities"))
	got, _ := svc.Block(b.ID)
	assert.Equal(t, domain.TableContent{Rows: []*domain.Row{}}, got.Content)
}

func TestCanvasService_LateTableResponse(t *testing.T) {
	rows := []*domain.Row{domain.NewRow(domain.Cell{Column: "n", Value: 1.0})}

	t.Run("dialog closed, block alive", func(t *testing.T) {
		gen := &fakeGenerator{rows: rows, gate: make(chan struct{})}
		svc, _ := newService(t, service.Options{Generator: gen})
		b := svc.AddDefaultBlock()
		require.NoError(t, svc.OpenTableDialog(b.ID))

		done := make(chan error, 1)
		go func() { done <- svc.GenerateTable(context.Background(), b.ID, "numbers") }()
		require.Eventually(t, func() bool {
			d := svc.State().State.TableDialog
			return d != nil && d.Pending
		}, time.Second, 5*time.Millisecond)

		svc.CloseTableDialog()
		assert.Equal(t, []string{"table:id-2"}, svc.Running())
		close(gen.gate)
		require.NoError(t, <-done)

		got, _ := svc.Block(b.ID)
		assert.Equal(t, domain.ContentTable, got.Content.Kind())
		assert.Empty(t, svc.Running())
	})

	t.Run("block deleted", func(t *testing.T) {
		gen := &fakeGenerator{rows: rows, gate: make(chan struct{})}
		svc, _ := newService(t, service.Options{Generator: gen})
		b := svc.AddDefaultBlock()
		keep := svc.AddDefaultBlock()

		done := make(chan error, 1)
		go func() { done <- svc.GenerateTable(context.Background(), b.ID, "numbers") }()
		require.Eventually(t, func() bool { return len(svc.Running()) == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, svc.DeleteBlock(b.ID))
		close(gen.gate)
		require.NoError(t, <-done)

		view := svc.State()
		require.Len(t, view.State.Blocks, 1)
		assert.Equal(t, keep.ID, view.State.Blocks[0].ID)
		assert.Nil(t, view.State.Blocks[0].Content)
	})
}

func TestCanvasService_DrawWhileTablePending(t *testing.T) {
	gen := &fakeGenerator{rows: []*domain.Row{}, gate: make(chan struct{})}
	svc, _ := newService(t, service.Options{Generator: gen})
	b := svc.AddDefaultBlock()

	done := make(chan error, 1)
	go func() { done <- svc.GenerateTable(context.Background(), b.ID, "anything") }()
	require.Eventually(t, func() bool { return len(svc.Running()) == 1 }, time.Second, 5*time.Millisecond)

	drawn, ok := svc.DrawBlock(domain.Point{X: 400, Y: 400}, domain.Point{X: 500, Y: 500})
	require.True(t, ok)
	assert.Equal(t, drawn.ID, svc.State().State.SelectedID)

	close(gen.gate)
	require.NoError(t, <-done)
	waitJobs(t, svc)
}

func TestCanvasService_Arrange(t *testing.T) {
	svc, _ := newService(t, service.Options{})
	svc.PlaceBlock(1000, 1000, 90, 60)
	svc.PlaceBlock(-300, 70, 90, 60)

	blocks := svc.Arrange(0, 0)
	require.Len(t, blocks, 2)
	assert.False(t, blocks[0].Rect().Intersects(blocks[1].Rect()))
	assert.Equal(t, 0.0, blocks[0].Y)
}

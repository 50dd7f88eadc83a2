package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"canvas/internal/board"
	"canvas/internal/domain"
	"canvas/internal/logging"
	"canvas/internal/tablegen"
)

// ─────────────────────────────────────────────────────────────
// Canvas Service: owns the canvas state
// ─────────────────────────────────────────────────────────────

// ErrGeneratorUnavailable is returned by GenerateTable when no table
// generator is configured.
var ErrGeneratorUnavailable = errors.New("table generator not configured")

// ErrShuttingDown is returned when background work is requested after Shutdown.
var ErrShuttingDown = errors.New("canvas is shutting down")

// CanvasView is what the frontend renders: the state, plus the values derived
// from it.
type CanvasView struct {
	State   domain.CanvasState `json:"state"`
	Order   []string           `json:"order"` // block ids, bottom to top
	Toolbar *board.ToolbarView `json:"toolbar"`
	Variant domain.Variant     `json:"variant"`
}

// Options configures a CanvasService.
type Options struct {
	Variant   domain.Variant
	Generator tablegen.Generator // nil disables table generation
	Emitter   EventEmitter
	Layout    *board.LayoutEngine
	// NewID overrides block and request id generation (tests).
	NewID func() string
}

// CanvasService serialises every transition behind one mutex and publishes
// each new state as EventCanvasChanged. Async completions (image encodes,
// table responses) compute their next state from the latest state when they
// land and resolve their target by id.
type CanvasService struct {
	ctx context.Context
	log *slog.Logger

	mu      sync.Mutex
	state   domain.CanvasState
	surface board.Surface
	variant domain.Variant
	tables  tablegen.Generator
	layout  *board.LayoutEngine
	emitter EventEmitter
	newID   func() string

	jobs jobTracker
}

// NewCanvasService creates a CanvasService with an empty canvas. ctx is handed
// to the emitter on every publish.
func NewCanvasService(ctx context.Context, opts Options) *CanvasService {
	if opts.Variant == "" {
		opts.Variant = domain.VariantFull
	}
	if opts.Emitter == nil {
		opts.Emitter = NoopEmitter{}
	}
	if opts.Layout == nil {
		opts.Layout = board.NewLayoutEngine()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &CanvasService{
		ctx:     ctx,
		log:     logging.WithComponent("canvas"),
		variant: opts.Variant,
		tables:  opts.Generator,
		layout:  opts.Layout,
		emitter: opts.Emitter,
		newID:   opts.NewID,
	}
}

// ── Reads ─────────────────────────────────────────────────

// State returns the current view.
func (s *CanvasService) State() CanvasView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Block returns one block by id.
func (s *CanvasService) Block(id string) (domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.state.Block(id)
	if !ok {
		return domain.Block{}, notFound(id)
	}
	return b, nil
}

// Blocks returns the blocks in render order (selected block last).
func (s *CanvasService) Blocks() []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return board.RenderOrder(s.state)
}

// Toolbar returns the toolbar for the selected block, nil when none is selected.
func (s *CanvasService) Toolbar() *board.ToolbarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return board.Toolbar(s.state, s.variant)
}

// Variant returns the active canvas variant.
func (s *CanvasService) Variant() domain.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// ── Configuration ─────────────────────────────────────────

// SetVariant switches the variant. Existing content is kept; only the offered
// actions change.
func (s *CanvasService) SetVariant(v domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.variant == v {
		return
	}
	s.log.Info("variant changed", "from", s.variant, "to", v)
	s.variant = v
	s.publishLocked()
}

// SetGenerator swaps the table generator. Requests already in flight finish
// against the generator they started with.
func (s *CanvasService) SetGenerator(g tablegen.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = g
}

// SetSurfaceOrigin records the surface's bounding-box origin in viewport
// coordinates.
func (s *CanvasService) SetSurfaceOrigin(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.Origin = domain.Point{X: x, Y: y}
}

// ── Pointer input ─────────────────────────────────────────

// PointerDown routes a pointer-down in viewport coordinates.
func (s *CanvasService) PointerDown(ev board.PointerEvent) CanvasView {
	return s.transition(func(st domain.CanvasState) domain.CanvasState {
		return s.surface.PointerDown(st, ev)
	})
}

// PointerMove updates the draw preview. No-op when no gesture is in progress.
func (s *CanvasService) PointerMove(clientX, clientY float64) CanvasView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !board.Drawing(s.state) {
		return s.viewLocked()
	}
	s.state = s.surface.PointerMove(s.state, clientX, clientY)
	s.publishLocked()
	return s.viewLocked()
}

// PointerUp finishes the draw gesture, committing a block when it is large enough.
func (s *CanvasService) PointerUp(clientX, clientY float64) CanvasView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !board.Drawing(s.state) {
		return s.viewLocked()
	}
	id := s.newID()
	s.state = s.surface.PointerUp(s.state, clientX, clientY, id)
	if board.Has(s.state, id) {
		s.log.Debug("block drawn", "id", id)
	}
	s.publishLocked()
	return s.viewLocked()
}

// CancelDraw drops the gesture in progress, if any.
func (s *CanvasService) CancelDraw() CanvasView {
	return s.transition(board.CancelDraw)
}

// ── Registry ──────────────────────────────────────────────

// AddDefaultBlock appends a block at the default position and size.
func (s *CanvasService) AddDefaultBlock() domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.state = board.AddDefault(s.state, id)
	s.publishLocked()
	b, _ := s.state.Block(id)
	return b
}

// PlaceBlock appends a block with explicit geometry. Non-positive sizes fall
// back to the default size.
func (s *CanvasService) PlaceBlock(x, y, width, height float64) domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	width, height = defaultSize(width, height)
	return s.appendLocked(domain.Block{ID: s.newID(), X: x, Y: y, Width: width, Height: height})
}

// AutoPlaceBlock appends a block at the first free grid position.
func (s *CanvasService) AutoPlaceBlock(width, height float64) domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	width, height = defaultSize(width, height)
	x, y := s.layout.NextPosition(s.state.Blocks, width, height)
	return s.appendLocked(domain.Block{ID: s.newID(), X: x, Y: y, Width: width, Height: height})
}

// DrawBlock runs a complete draw gesture between two surface-local points.
// ok is false when the rectangle was too small to commit.
func (s *CanvasService) DrawBlock(from, to domain.Point) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.state = board.BeginDraw(s.state, from)
	s.state = board.MoveDraw(s.state, to)
	s.state = board.EndDraw(s.state, id)
	s.publishLocked()
	return s.state.Block(id)
}

// SelectBlock selects the block.
func (s *CanvasService) SelectBlock(id string) error {
	return s.mutate("select block", id, func(st domain.CanvasState) domain.CanvasState {
		return board.Select(st, id)
	})
}

// ClearSelection deselects whatever is selected.
func (s *CanvasService) ClearSelection() {
	s.transition(board.ClearSelection)
}

// MoveBlock sets the block's position.
func (s *CanvasService) MoveBlock(id string, x, y float64) error {
	return s.UpdateBlock(id, domain.MoveTo(x, y))
}

// ResizeBlock sets the block's size. Non-positive dimensions are ignored.
func (s *CanvasService) ResizeBlock(id string, width, height float64) error {
	return s.UpdateBlock(id, domain.ResizeTo(width, height))
}

// UpdateBlock merges a geometry patch into the block.
func (s *CanvasService) UpdateBlock(id string, patch domain.BlockPatch) error {
	return s.mutate("update block", id, func(st domain.CanvasState) domain.CanvasState {
		return board.Update(st, id, patch)
	})
}

// DuplicateBlock copies the block at an offset and selects the copy.
func (s *CanvasService) DuplicateBlock(id string) (domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !board.Has(s.state, id) {
		return domain.Block{}, fmt.Errorf("duplicate block: %w", notFound(id))
	}
	newID := s.newID()
	s.state = board.Duplicate(s.state, id, newID)
	s.publishLocked()
	b, _ := s.state.Block(newID)
	return b, nil
}

// DeleteBlock removes the block.
func (s *CanvasService) DeleteBlock(id string) error {
	return s.mutate("delete block", id, func(st domain.CanvasState) domain.CanvasState {
		return board.Remove(st, id)
	})
}

// Arrange lays every block out on the grid starting at (startX, startY).
func (s *CanvasService) Arrange(startX, startY float64) []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = board.Arrange(s.state, s.layout, startX, startY)
	s.publishLocked()
	return board.RenderOrder(s.state)
}

// ── Content ───────────────────────────────────────────────

// SetIcon assigns the fixed icon.
func (s *CanvasService) SetIcon(id string) error {
	return s.mutate("set icon", id, func(st domain.CanvasState) domain.CanvasState {
		return board.SetIcon(st, id)
	})
}

// SetText assigns text. An empty string is a cancelled prompt and changes nothing.
func (s *CanvasService) SetText(id, text string) error {
	return s.mutate("set text", id, func(st domain.CanvasState) domain.CanvasState {
		return board.SetText(st, id, text)
	})
}

// SetImageDataURI assigns an already encoded image.
func (s *CanvasService) SetImageDataURI(id, dataURI string) error {
	if err := s.supports(domain.ContentImage); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	if _, _, err := ParseDataURI(dataURI); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return s.mutate("set image", id, func(st domain.CanvasState) domain.CanvasState {
		return board.SetImage(st, id, dataURI)
	})
}

// LoadImageFile encodes the file at path in the background and assigns it to
// the block when done. A block deleted in the meantime is left alone.
// An empty path is a cancelled file dialog.
func (s *CanvasService) LoadImageFile(id, path string) error {
	if path == "" {
		return nil
	}
	if err := s.supports(domain.ContentImage); err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	if _, err := s.Block(id); err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	jobID := "image:" + s.nextJobID()
	started := s.jobs.Go(jobID, func() {
		uri, err := EncodeFile(path)
		if err != nil {
			s.log.Warn("image encode failed", "id", id, "path", path, "err", err)
			s.emitError(id, "image", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !board.Has(s.state, id) {
			s.log.Debug("image completion dropped, block gone", "id", id)
			return
		}
		s.state = board.SetImage(s.state, id, uri)
		s.publishLocked()
	})
	if !started {
		return fmt.Errorf("load image: %w", ErrShuttingDown)
	}
	return nil
}

// OpenTableDialog opens the table prompt for the block.
func (s *CanvasService) OpenTableDialog(id string) error {
	if err := s.supports(domain.ContentTable); err != nil {
		return fmt.Errorf("open table dialog: %w", err)
	}
	return s.mutate("open table dialog", id, func(st domain.CanvasState) domain.CanvasState {
		return board.OpenTableDialog(st, id)
	})
}

// CloseTableDialog dismisses the table prompt. A request in flight still lands.
func (s *CanvasService) CloseTableDialog() {
	s.transition(board.CloseTableDialog)
}

// GenerateTable sends prompt to the generator and assigns the returned rows
// to the block. It blocks for the round trip. On failure the content is left
// untouched, EventCanvasError is published and the error is returned. An
// empty prompt is a cancelled dialog and does nothing.
func (s *CanvasService) GenerateTable(ctx context.Context, id, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}

	s.mu.Lock()
	if !s.variant.Supports(domain.ContentTable) {
		s.mu.Unlock()
		return fmt.Errorf("generate table: %w", domain.ErrUnsupportedContent)
	}
	if !board.Has(s.state, id) {
		s.mu.Unlock()
		return fmt.Errorf("generate table: %w", notFound(id))
	}
	gen := s.tables
	if gen == nil {
		s.mu.Unlock()
		return fmt.Errorf("generate table: %w", ErrGeneratorUnavailable)
	}
	requestID := s.newID()
	jobID := "table:" + requestID
	if !s.jobs.TryLock(jobID) {
		s.mu.Unlock()
		return fmt.Errorf("generate table: %w", ErrShuttingDown)
	}
	defer s.jobs.Unlock(jobID)
	s.state = board.SubmitTablePrompt(s.state, id, requestID)
	s.publishLocked()
	s.mu.Unlock()

	s.log.Debug("table requested", "id", id, "request", requestID)
	rows, err := gen.Generate(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = board.FailTable(s.state, requestID)
		s.publishLocked()
		s.log.Warn("table generation failed", "id", id, "request", requestID, "err", err)
		s.emitError(id, "table", err)
		return fmt.Errorf("generate table: %w", err)
	}
	if !board.Has(s.state, id) {
		s.log.Debug("table completion dropped, block gone", "id", id, "request", requestID)
	}
	s.state = board.CompleteTable(s.state, id, requestID, rows)
	s.publishLocked()
	return nil
}

// ── Lifecycle ─────────────────────────────────────────────

// Running lists the ids of background jobs still in flight.
func (s *CanvasService) Running() []string {
	return s.jobs.Running()
}

// Wait blocks until in-flight image and table jobs finish or ctx is done.
func (s *CanvasService) Wait(ctx context.Context) error {
	return s.jobs.WaitAll(ctx)
}

// Shutdown stops admitting image and table jobs, then waits for the running
// ones like Wait. Synchronous edits keep working.
func (s *CanvasService) Shutdown(ctx context.Context) error {
	s.jobs.Close()
	return s.jobs.WaitAll(ctx)
}

// ── internals ─────────────────────────────────────────────

// transition applies fn and publishes the result.
func (s *CanvasService) transition(fn func(domain.CanvasState) domain.CanvasState) CanvasView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	s.publishLocked()
	return s.viewLocked()
}

// mutate is transition for operations that target one block; an unknown id
// is reported and leaves the state unchanged.
func (s *CanvasService) mutate(op, id string, fn func(domain.CanvasState) domain.CanvasState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !board.Has(s.state, id) {
		return fmt.Errorf("%s: %w", op, notFound(id))
	}
	s.state = fn(s.state)
	s.publishLocked()
	return nil
}

func (s *CanvasService) appendLocked(b domain.Block) domain.Block {
	s.state = board.Append(s.state, b)
	s.publishLocked()
	return b
}

func (s *CanvasService) supports(k domain.ContentKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.variant.Supports(k) {
		return domain.ErrUnsupportedContent
	}
	return nil
}

func (s *CanvasService) nextJobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newID()
}

func (s *CanvasService) viewLocked() CanvasView {
	order := board.RenderOrder(s.state)
	ids := make([]string, len(order))
	for i, b := range order {
		ids[i] = b.ID
	}
	st := s.state
	if st.Blocks == nil {
		st.Blocks = []domain.Block{}
	}
	return CanvasView{
		State:   st,
		Order:   ids,
		Toolbar: board.Toolbar(s.state, s.variant),
		Variant: s.variant,
	}
}

// publishLocked emits the current view. Caller holds s.mu, so events leave in
// the order the states were produced.
func (s *CanvasService) publishLocked() {
	s.emitter.Emit(s.ctx, EventCanvasChanged, s.viewLocked())
}

func (s *CanvasService) emitError(id, op string, err error) {
	s.emitter.Emit(s.ctx, EventCanvasError, ErrorEvent{BlockID: id, Operation: op, Message: err.Error()})
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", domain.ErrBlockNotFound, id)
}

func defaultSize(w, h float64) (float64, float64) {
	if w <= 0 {
		w = domain.DefaultBlockWidth
	}
	if h <= 0 {
		h = domain.DefaultBlockHeight
	}
	return w, h
}

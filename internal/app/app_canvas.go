package app

import (
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"canvas/internal/board"
	"canvas/internal/domain"
	"canvas/internal/secret"
	"canvas/internal/service"
)

// ============================================================
// Canvas
// ============================================================

func (a *App) GetState() service.CanvasView {
	return a.canvas.State()
}

// SetSurfaceOrigin receives the surface's bounding-box origin whenever the
// frontend lays it out.
func (a *App) SetSurfaceOrigin(x, y float64) {
	a.canvas.SetSurfaceOrigin(x, y)
}

func (a *App) PointerDown(ev board.PointerEvent) service.CanvasView {
	return a.canvas.PointerDown(ev)
}

func (a *App) PointerMove(clientX, clientY float64) service.CanvasView {
	return a.canvas.PointerMove(clientX, clientY)
}

func (a *App) PointerUp(clientX, clientY float64) service.CanvasView {
	return a.canvas.PointerUp(clientX, clientY)
}

func (a *App) CancelDraw() service.CanvasView {
	return a.canvas.CancelDraw()
}

// ============================================================
// Blocks
// ============================================================

func (a *App) AddDefaultBlock() domain.Block {
	return a.canvas.AddDefaultBlock()
}

func (a *App) SelectBlock(blockID string) error {
	return a.canvas.SelectBlock(blockID)
}

func (a *App) ClearSelection() {
	a.canvas.ClearSelection()
}

func (a *App) MoveBlock(blockID string, x, y float64) error {
	return a.canvas.MoveBlock(blockID, x, y)
}

func (a *App) ResizeBlock(blockID string, w, h float64) error {
	return a.canvas.ResizeBlock(blockID, w, h)
}

func (a *App) DuplicateBlock(blockID string) (domain.Block, error) {
	return a.canvas.DuplicateBlock(blockID)
}

func (a *App) DeleteBlock(blockID string) error {
	return a.canvas.DeleteBlock(blockID)
}

func (a *App) ArrangeBlocks(startX, startY float64) []domain.Block {
	return a.canvas.Arrange(startX, startY)
}

// ============================================================
// Content
// ============================================================

func (a *App) SetIcon(blockID string) error {
	return a.canvas.SetIcon(blockID)
}

// SetText assigns text from the prompt. An empty string (cancelled prompt)
// changes nothing.
func (a *App) SetText(blockID, text string) error {
	return a.canvas.SetText(blockID, text)
}

// SetImageData assigns an image the frontend already encoded.
func (a *App) SetImageData(blockID, dataURI string) error {
	return a.canvas.SetImageDataURI(blockID, dataURI)
}

// PickImage opens a native file picker and loads the chosen file into the
// block in the background. Cancelling the picker does nothing.
func (a *App) PickImage(blockID string) error {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Image",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg;*.gif;*.webp;*.svg;*.bmp"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil {
		return err
	}
	return a.canvas.LoadImageFile(blockID, path)
}

func (a *App) OpenTableDialog(blockID string) error {
	return a.canvas.OpenTableDialog(blockID)
}

func (a *App) CloseTableDialog() {
	a.canvas.CloseTableDialog()
}

// GenerateTable submits the dialog's prompt and waits for the generator.
// Failures are shown in a blocking error dialog and returned; the block keeps
// its previous content.
func (a *App) GenerateTable(blockID, prompt string) error {
	err := a.canvas.GenerateTable(a.ctx, blockID, prompt)
	if alertable(err) {
		a.alert("Table generation failed", err.Error())
	}
	return err
}

// ============================================================
// Generator credentials
// ============================================================

// SetTableGenToken stores the bearer token sent to the table generator.
// An empty token removes it.
func (a *App) SetTableGenToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return a.secrets.Delete(secret.TableGenTokenKey)
	}
	return a.secrets.Set(secret.TableGenTokenKey, []byte(token))
}

// HasTableGenToken reports whether a token is stored.
func (a *App) HasTableGenToken() (bool, error) {
	v, err := a.secrets.Get(secret.TableGenTokenKey)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"canvas/internal/config"
	"canvas/internal/domain"
	"canvas/internal/logging"
	"canvas/internal/secret"
	"canvas/internal/service"
	"canvas/internal/tablegen"
)

// shutdownGrace bounds how long Shutdown waits for image and table jobs.
const shutdownGrace = 5 * time.Second

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	cfgPath string
	cfgMu   sync.Mutex
	cfg     config.Config
	watcher *config.Watcher

	secrets secret.SecretStore
	emitter service.EventEmitter
	canvas  *service.CanvasService

	// alert shows a blocking error dialog.
	alert func(title, message string)
}

// New creates a new App from a loaded config. cfgPath is watched for changes
// once the app starts.
func New(cfg config.Config, cfgPath string) *App {
	a := &App{
		log:     logging.WithComponent("app"),
		cfgPath: cfgPath,
		cfg:     cfg,
		secrets: secret.NewKeyringStore(),
		emitter: wailsEmitter{},
	}
	a.alert = a.messageDialog
	return a
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	cfg := a.config()
	gen, err := newGenerator(cfg, a.secrets)
	if err != nil {
		a.log.Error("table generator disabled", "err", err)
	}
	a.canvas = service.NewCanvasService(ctx, service.Options{
		Variant:   cfg.Variant,
		Generator: gen,
		Emitter:   a.emitter,
	})

	if a.cfgPath != "" {
		w, err := config.Watch(a.ctx, a.cfgPath, a.applyConfig)
		if err != nil {
			a.log.Warn("config watch disabled", "path", a.cfgPath, "err", err)
		} else {
			a.watcher = w
		}
	}
	a.log.Info("canvas ready", "variant", cfg.Variant, "tablegen", cfg.TableGen.Endpoint)
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.canvas != nil {
		waitCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		if err := a.canvas.Shutdown(waitCtx); err != nil {
			a.log.Warn("shutdown with jobs still running", "jobs", a.canvas.Running(), "err", err)
		}
		cancel()
	}
	if a.cancel != nil {
		a.cancel()
	}
	logging.Close()
}

// ============================================================
// Configuration
// ============================================================

func (a *App) config() config.Config {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	return a.cfg
}

// applyConfig swaps in a reloaded config: variant and generator settings take
// effect immediately. Other settings apply on the next start.
func (a *App) applyConfig(cfg config.Config) {
	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()

	if a.canvas == nil {
		return
	}
	gen, err := newGenerator(cfg, a.secrets)
	if err != nil {
		a.log.Error("table generator not reloaded", "err", err)
		return
	}
	a.canvas.SetGenerator(gen)
	a.canvas.SetVariant(cfg.Variant)
}

// newGenerator builds the table generator client. Returns nil (and no error)
// when the variant offers no tables or no endpoint is set.
func newGenerator(cfg config.Config, secrets secret.SecretStore) (tablegen.Generator, error) {
	if !cfg.Variant.Supports(domain.ContentTable) || cfg.TableGen.Endpoint == "" {
		return nil, nil
	}
	c, err := tablegen.New(tablegen.Options{
		Endpoint:      cfg.TableGen.Endpoint,
		Timeout:       cfg.TableGen.Timeout(),
		RatePerMinute: cfg.TableGen.RatePerMinute,
		Secrets:       secrets,
	})
	if err != nil {
		return nil, fmt.Errorf("table generator: %w", err)
	}
	return c, nil
}

// ============================================================
// Frontend plumbing
// ============================================================

// wailsEmitter delivers service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

func (a *App) messageDialog(title, message string) {
	_, err := wailsRuntime.MessageDialog(a.ctx, wailsRuntime.MessageDialogOptions{
		Type:    wailsRuntime.ErrorDialog,
		Title:   title,
		Message: message,
	})
	if err != nil {
		a.log.Warn("error dialog failed", "err", err)
	}
}

// alertable reports whether err deserves a blocking dialog. Stale or
// unsupported targets are frontend bugs, not user-facing failures. Nothing
// is shown while the app is closing.
func alertable(err error) bool {
	return err != nil &&
		!errors.Is(err, domain.ErrBlockNotFound) &&
		!errors.Is(err, domain.ErrUnsupportedContent) &&
		!errors.Is(err, service.ErrShuttingDown)
}

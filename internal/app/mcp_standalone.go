package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"canvas/internal/config"
	"canvas/internal/logging"
	mcpserver "canvas/internal/mcp"
	"canvas/internal/secret"
	"canvas/internal/service"
)

// ServeMCP runs the canvas as a standalone MCP server on stdin/stdout with no
// GUI. The canvas lives only for the lifetime of the process.
func ServeMCP(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log := logging.WithComponent("mcp")

	gen, err := newGenerator(cfg, secret.NewKeyringStore())
	if err != nil {
		log.Error("table generator disabled", "err", err)
	}
	canvas := service.NewCanvasService(ctx, service.Options{
		Variant:   cfg.Variant,
		Generator: gen,
		Emitter:   service.NoopEmitter{},
	})

	srv := mcpserver.New(canvas)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("interrupted, stopping")
	}

	waitCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
	defer stop()
	if waitErr := canvas.Shutdown(waitCtx); waitErr != nil {
		log.Warn("jobs still running at exit", "jobs", canvas.Running())
	}
	return err
}

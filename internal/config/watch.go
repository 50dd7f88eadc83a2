package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"canvas/internal/logging"
)

// settleDelay coalesces the burst of events editors emit on save.
const settleDelay = 150 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	onChange func(Config)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
	once  sync.Once
}

// Watch starts watching path. onChange receives every successfully loaded
// config; files that fail to load or validate are logged and skipped.
// The watch stops when ctx is done or Close is called.
func Watch(ctx context.Context, path string, onChange func(Config)) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	// Watch the directory: editors replace files by rename.
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	w := &Watcher{path: filepath.Clean(path), fsw: fsw, onChange: onChange, done: make(chan struct{})}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	log := logging.WithComponent("config")
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("config watch error", "err", err)
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(settleDelay, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}
	cfg, err := Load(w.path)
	if err != nil {
		logging.WithComponent("config").Warn("config reload skipped", "path", w.path, "err", err)
		return
	}
	logging.WithComponent("config").Info("config reloaded", "path", w.path, "variant", cfg.Variant)
	w.onChange(cfg)
}

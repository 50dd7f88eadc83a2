package service

import (
	"context"
	"sort"
	"sync"
)

// ExportedJobTracker is an exported alias so _test packages can test the tracker.
type ExportedJobTracker = jobTracker

// ─────────────────────────────────────────────────────────────
// jobTracker: in-flight async work (image encodes, table requests)
// ─────────────────────────────────────────────────────────────

// jobTracker records which background jobs are running so shutdown can wait
// for them. A job id can only be registered once at a time. After Close no
// new job is admitted.
type jobTracker struct {
	mu      sync.Mutex
	running map[string]struct{}
	closed  bool
	// idle is closed whenever no job is running; nil means idle.
	idle chan struct{}
}

// TryLock marks jobID as running. Returns false if it already is or the
// tracker is closed.
func (g *jobTracker) TryLock(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[jobID]; ok {
		return false
	}
	if len(g.running) == 0 {
		g.idle = make(chan struct{})
	}
	g.running[jobID] = struct{}{}
	return true
}

// Unlock marks the job as finished. Must follow a successful TryLock.
func (g *jobTracker) Unlock(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[jobID]; !ok {
		return
	}
	delete(g.running, jobID)
	if len(g.running) == 0 && g.idle != nil {
		close(g.idle)
		g.idle = nil
	}
}

// Go runs fn on its own goroutine as job jobID. Returns false without running
// fn when a job with that id is already in flight or the tracker is closed.
func (g *jobTracker) Go(jobID string, fn func()) bool {
	if !g.TryLock(jobID) {
		return false
	}
	go func() {
		defer g.Unlock(jobID)
		fn()
	}()
	return true
}

// Close stops admitting jobs. Jobs already running are unaffected.
func (g *jobTracker) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// Running lists the ids of in-flight jobs, sorted.
func (g *jobTracker) Running() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.running))
	for id := range g.running {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WaitAll blocks until no job is running or ctx is done.
// Returns ctx.Err() when it gave up waiting.
func (g *jobTracker) WaitAll(ctx context.Context) error {
	for {
		g.mu.Lock()
		idle := g.idle
		g.mu.Unlock()
		if idle == nil {
			return nil
		}
		select {
		case <-idle:
			// A job admitted after idle closed starts a new round.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

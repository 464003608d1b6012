package translate

import (
	"context"
	"sync"
	"sync/atomic"
)

// Gate pauses a pipeline between scripts. Pause and Resume may be called
// from any goroutine; the zero value is an open gate.
type Gate struct {
	mu     sync.Mutex
	paused atomic.Bool
	resume chan struct{}
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	return g.paused.Load()
}

// Pause closes the gate.
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused.Load() {
		return
	}
	g.resume = make(chan struct{})
	g.paused.Store(true)
}

// Resume opens the gate, releasing every waiter.
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused.Load() {
		return
	}
	g.paused.Store(false)
	close(g.resume)
}

// Toggle flips the gate and returns whether it is now paused.
func (g *Gate) Toggle() bool {
	if g.Paused() {
		g.Resume()
		return false
	}
	g.Pause()
	return true
}

// Wait blocks while the gate is paused.
func (g *Gate) Wait(ctx context.Context) error {
	if !g.paused.Load() {
		return nil
	}
	g.mu.Lock()
	ch := g.resume
	paused := g.paused.Load()
	g.mu.Unlock()
	if !paused {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

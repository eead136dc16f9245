// Package debounce runs a function once its trigger has been quiet for a
// fixed window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls until no new trigger arrived for the configured
// delay. Only the most recently triggered function runs.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// New creates a Debouncer with the given quiet window.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Group debounces independently per key.
type Group struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*Debouncer
}

// NewGroup creates a Group whose keys share the same quiet window.
func NewGroup(delay time.Duration) *Group {
	return &Group{delay: delay, pending: make(map[string]*Debouncer)}
}

// Trigger schedules fn for key, replacing that key's pending call.
func (g *Group) Trigger(key string, fn func()) {
	g.mu.Lock()
	d, ok := g.pending[key]
	if !ok {
		d = New(g.delay)
		g.pending[key] = d
	}
	g.mu.Unlock()

	d.Trigger(func() {
		g.mu.Lock()
		if !d.Pending() {
			delete(g.pending, key)
		}
		g.mu.Unlock()
		fn()
	})
}

// Stop cancels every pending call.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, d := range g.pending {
		d.Cancel()
		delete(g.pending, key)
	}
}

// Len returns the number of keys with a pending call.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

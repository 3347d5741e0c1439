// Package store holds the in-memory draft state and the debounced
// persistence plumbing between the application and its repositories.
package store

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into one call to fn after a quiet
// window. Flush runs a pending call immediately, which shutdown paths use
// so the last write never stays buffered.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func()
	timer  *time.Timer
	closed bool
}

// NewDebouncer builds a debouncer calling fn after window of quiet.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger arms or re-arms the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Flush runs a pending call now. Without a pending trigger it does nothing.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && !d.closed
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if pending {
		d.fn()
	}
}

// Close flushes a pending call and disables the debouncer.
func (d *Debouncer) Close() {
	d.Flush()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

package search

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of trigger events into a single callback:
// each Trigger cancels any pending callback and schedules a new one, so
// only the last event in a burst fires after the quiet interval. There is
// at most one pending callback at a time.
//
// Used for live-search keystrokes and payload file reloads.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet interval, replacing any pending
// callback. fn runs on a timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

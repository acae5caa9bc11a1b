// Package timer implements the search engine's monotonic countdown, with
// pause/resume so time spent awaiting human arbitration doesn't count
// against the search timeout.
package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a concurrency-safe countdown. The zero value is not usable;
// construct with New.
type Timer struct {
	mu        sync.Mutex
	deadline  time.Time
	remaining time.Duration
	paused    atomic.Bool
	expired   atomic.Bool
	pauseAt   time.Time
}

// New starts a timer configured to expire after d. A non-positive d
// expires the timer immediately.
func New(d time.Duration) *Timer {
	t := &Timer{}
	if d <= 0 {
		t.expired.Store(true)
		return t
	}
	t.deadline = time.Now().Add(d)
	return t
}

// Expired reports whether the timer has fired. Polled by the search
// engine before each node expansion.
func (t *Timer) Expired() bool {
	if t.expired.Load() {
		return true
	}
	if t.paused.Load() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Now().After(t.deadline) {
		t.expired.Store(true)
		return true
	}
	return false
}

// Pause freezes the countdown. Idempotent.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused.Load() {
		return
	}
	t.paused.Store(true)
	t.pauseAt = time.Now()
	t.remaining = t.deadline.Sub(t.pauseAt)
}

// Resume unfreezes the countdown, shifting the deadline forward by the
// duration spent paused. Idempotent.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused.Load() {
		return
	}
	t.paused.Store(false)
	t.deadline = time.Now().Add(t.remaining)
}

// Remaining reports the time left, zero if expired or not yet started.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expired.Load() {
		return 0
	}
	if t.paused.Load() {
		return t.remaining
	}
	d := time.Until(t.deadline)
	if d < 0 {
		return 0
	}
	return d
}

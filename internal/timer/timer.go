// Package timer implements the cooperative stop protocol the search loop
// polls while walking the tree: a monotonic deadline plus an externally
// set forced-stop flag, ORed together into IsStopped.
package timer

import (
	"sync/atomic"
	"time"
)

// NodeCheckInterval is how often the search should call Check: once every
// this many visited nodes. Cheaper than checking the clock on every node,
// fine-grained enough for millisecond time budgets.
const NodeCheckInterval = 2048

// Timer is a monotonic wall-clock deadline with a cooperative stop flag.
// The search goroutine owns Check/IsStopped; a separate UCI goroutine may
// call Stop at any time to request early termination.
type Timer struct {
	start   time.Time
	target  time.Time
	stopped atomic.Bool
	forced  atomic.Bool
}

// New returns a Timer that has not been started.
func New() *Timer {
	return &Timer{}
}

// Start records the current time and arms the deadline durMs milliseconds
// from now. A durMs of 0 or less means "no deadline" (depth/infinite search);
// Check never fires in that case.
func (t *Timer) Start(durMs int64) {
	t.start = time.Now()
	t.stopped.Store(false)
	t.forced.Store(false)
	if durMs <= 0 {
		t.target = time.Time{}
		return
	}
	t.target = t.start.Add(time.Duration(durMs) * time.Millisecond)
}

// Check polls the wall clock and latches stopped once the deadline passes.
// The search calls this every NodeCheckInterval nodes.
func (t *Timer) Check() {
	if t.target.IsZero() {
		return
	}
	if !time.Now().Before(t.target) {
		t.stopped.Store(true)
	}
}

// Stop is called by the UCI thread in response to `stop` or `quit`.
func (t *Timer) Stop() {
	t.forced.Store(true)
}

// IsStopped reports whether the search should unwind, either because the
// deadline passed or because Stop was called.
func (t *Timer) IsStopped() bool {
	return t.stopped.Load() || t.forced.Load()
}

// Elapsed returns the time since Start in milliseconds.
func (t *Timer) Elapsed() int64 {
	return time.Since(t.start).Milliseconds()
}

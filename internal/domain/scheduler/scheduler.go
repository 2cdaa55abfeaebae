// Package scheduler defines single-shot delayed callbacks with cancellable
// handles. Widgets never touch timers directly: they schedule through a
// Group so a restart can invalidate everything they armed.
package scheduler

import (
	"time"
)

// Handle identifies one scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks after a delay. Implementations must run callbacks
// one at a time and never concurrently with the code that scheduled them.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time

	// After schedules fn to run once after d. Negative d is treated as zero.
	After(d time.Duration, fn func()) Handle

	// Cancel prevents a pending callback from running. It reports whether
	// the callback was still pending.
	Cancel(h Handle) bool
}

// Group tracks the handles one widget issued so they can be cancelled
// together. A Group is owned by a single event loop and is not safe for
// concurrent use.
type Group struct {
	s       Scheduler
	pending map[Handle]struct{}
}

// NewGroup wraps s.
func NewGroup(s Scheduler) *Group {
	return &Group{
		s:       s,
		pending: make(map[Handle]struct{}),
	}
}

// Now returns the underlying scheduler time.
func (g *Group) Now() time.Time {
	return g.s.Now()
}

// After schedules fn and remembers its handle until it runs or is cancelled.
func (g *Group) After(d time.Duration, fn func()) Handle {
	var h Handle
	h = g.s.After(d, func() {
		delete(g.pending, h)
		fn()
	})
	g.pending[h] = struct{}{}
	return h
}

// Cancel cancels one handle issued by this group. Zero handles are ignored.
func (g *Group) Cancel(h Handle) bool {
	if h == 0 {
		return false
	}
	if _, ok := g.pending[h]; !ok {
		return false
	}
	delete(g.pending, h)
	return g.s.Cancel(h)
}

// CancelAll cancels every outstanding callback and returns how many were
// still pending.
func (g *Group) CancelAll() int {
	n := 0
	for h := range g.pending {
		if g.s.Cancel(h) {
			n++
		}
		delete(g.pending, h)
	}
	return n
}

// Pending returns the number of callbacks this group is waiting on.
func (g *Group) Pending() int {
	return len(g.pending)
}

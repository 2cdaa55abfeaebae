package worker

import (
	"context"
	"sync"
	"time"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/pkg/logger"
)

// Poster delivers a command to the loop, waiting for room.
type Poster interface {
	Put(ctx context.Context, c model.Command) error
}

// Clock is a real-time scheduler.Scheduler. Expired timers do not run
// their callback directly: they post a KindTimer command so the callback
// runs on the loop goroutine.
type Clock struct {
	ctx    context.Context
	post   Poster
	now    func() time.Time
	logger logger.Logger

	mu     sync.Mutex
	seq    scheduler.Handle
	timers map[scheduler.Handle]*time.Timer
}

var _ scheduler.Scheduler = (*Clock)(nil)

// NewClock creates a clock posting to p. Expiries that are still in flight
// when ctx ends are dropped.
func NewClock(ctx context.Context, p Poster, opts ...ClockOption) *Clock {
	c := &Clock{
		ctx:    ctx,
		post:   p,
		now:    time.Now,
		logger: logger.Get().Named("clock"),
		timers: make(map[scheduler.Handle]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the wall clock time.
func (c *Clock) Now() time.Time {
	return c.now()
}

// After arms a timer for fn.
func (c *Clock) After(d time.Duration, fn func()) scheduler.Handle {
	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	h := c.seq
	c.timers[h] = time.AfterFunc(d, func() { c.expire(h, fn) })
	return h
}

// Cancel stops a timer. A timer that already expired but whose command has
// not reached the loop yet is still cancelled: its callback is skipped.
func (c *Clock) Cancel(h scheduler.Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timers[h]
	if !ok {
		return false
	}
	t.Stop()
	delete(c.timers, h)
	return true
}

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Stop cancels every armed timer.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, t := range c.timers {
		t.Stop()
		delete(c.timers, h)
	}
}

func (c *Clock) expire(h scheduler.Handle, fn func()) {
	cmd := model.Command{
		Kind: model.KindTimer,
		At:   c.now(),
		Fire: func() {
			if c.take(h) {
				fn()
			}
		},
	}
	if err := c.post.Put(c.ctx, cmd); err != nil {
		c.take(h)
		c.logger.Debug(c.ctx, "timer expiry dropped", logger.Error(err))
	}
}

// take claims h for running. It fails once h was cancelled.
func (c *Clock) take(h scheduler.Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.timers[h]; !ok {
		return false
	}
	delete(c.timers, h)
	return true
}

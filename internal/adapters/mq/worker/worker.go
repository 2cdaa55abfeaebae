// Package worker runs the event loop: the one goroutine that owns every
// widget. User input and timer expiries both reach it through the command
// queue, so widget code never runs concurrently with itself.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

// Command is what the loop reads off the queue.
type Command = model.Command

// Queue defines how the loop receives commands.
type Queue interface {
	Dequeue() <-chan Command
}

// Handler processes one command on the loop goroutine.
type Handler interface {
	Dispatch(ctx context.Context, cmd Command)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd Command)

// Dispatch calls f.
func (f HandlerFunc) Dispatch(ctx context.Context, cmd Command) { f(ctx, cmd) } //nolint:gocritic // hugeParam: Command is passed by value for channel semantics

// Loop drains the queue on a single goroutine.
type Loop struct {
	queue   Queue
	handler Handler
	name    string
	logger  logger.Logger

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop reading q and dispatching to h.
func NewLoop(q Queue, h Handler, opts ...Option) *Loop {
	l := &Loop{
		queue:    q,
		handler:  h,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named(l.name)
	return l
}

// Run processes commands until ctx is cancelled, Shutdown is called or the
// queue closes. It must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	commands := l.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			l.process(ctx, cmd)
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Shutdown stops the loop and waits for Run to return.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.stopOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one command. A panicking widget is logged and the loop keeps
// going.
func (l *Loop) process(ctx context.Context, cmd Command) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(ctx, "command panicked",
				logger.String("kind", string(cmd.Kind)),
				logger.String("widget", string(cmd.Widget)),
				logger.Any("panic", r),
			)
		}
		metrics.RecordCommandHandled(string(cmd.Kind), float64(time.Since(start).Microseconds())/1000)
	}()

	l.handler.Dispatch(ctx, cmd)
}

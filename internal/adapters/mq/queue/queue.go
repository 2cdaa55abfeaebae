// Package queue carries commands from producers (terminal input, timers,
// autoplay) to the single event loop that owns the widgets.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Command is the payload flowing through the queue.
type Command = model.Command

// Queue is a bounded FIFO of commands with a single consumer.
type Queue interface {
	// Enqueue adds c without blocking. It fails with ErrQueueFull when the
	// buffer is at capacity.
	Enqueue(ctx context.Context, c Command) error

	// Put adds c, waiting for room until ctx is done.
	Put(ctx context.Context, c Command) error

	// Dequeue returns the channel the consumer reads from. It is closed
	// after Close once the buffer drains.
	Dequeue() <-chan Command

	// Len returns the number of buffered commands.
	Len() int

	// Close stops accepting commands.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	commands chan Command
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.commands = make(chan Command, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds c if there is room.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Command) error { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return fmt.Errorf("enqueue %s: %w", c.Kind, err)
	}

	select {
	case q.commands <- c:
		metrics.UpdateQueueSize(len(q.commands))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return fmt.Errorf("enqueue %s: %w", c.Kind, ErrQueueFull)
	}
}

// Put adds c, blocking while the queue is full. Close waits for blocked
// producers, so callers must bound ctx.
func (q *InMemoryQueue) Put(ctx context.Context, c Command) error { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrQueueClosed
	}

	select {
	case q.commands <- c:
		metrics.UpdateQueueSize(len(q.commands))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return fmt.Errorf("put %s: %w", c.Kind, ctx.Err())
	}
}

// Dequeue returns the consumer channel.
func (q *InMemoryQueue) Dequeue() <-chan Command {
	return q.commands
}

// Len returns the number of buffered commands.
func (q *InMemoryQueue) Len() int {
	size := len(q.commands)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops the queue. Buffered commands stay readable. Closing twice is
// a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.commands)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

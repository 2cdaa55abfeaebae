package queue

import "errors"

// Sentinel errors returned by Enqueue and Put.
var (
	ErrQueueClosed = errors.New("queue closed")
	ErrQueueFull   = errors.New("queue full")
)

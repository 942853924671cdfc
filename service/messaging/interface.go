// Package messaging defines the bounded, asynchronous message pathway the
// traffic workers communicate through. Queues are intra-host, FIFO per
// producer, and carry fixed-shape payloads; no ordering is promised across
// distinct queues.
package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull signals backpressure from a bounded queue configured to fail
// rather than block when at capacity. Producers treat it as a degraded-mode
// signal, not a crash.
var ErrQueueFull = errors.New("queue full")

// Queue represents an abstract bounded message queue for any payload type.
type Queue[T any] interface {
	// Publish appends a new message with payload to the queue. At capacity
	// it either blocks until space frees or fails with ErrQueueFull,
	// depending on the implementation's configuration.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message, blocking until one arrives or ctx
	// is done.
	Consume(ctx context.Context) (Message[T], error)

	// TryConsume retrieves the oldest message without blocking. ok=false
	// means the queue is momentarily empty; that is a transient absence,
	// not an error, and callers poll or sleep rather than fail.
	TryConsume(ctx context.Context) (Message[T], bool, error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message; the queue may
	// redeliver it subject to its retry policy.
	Nack(err error) error
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kainat5008/Traffic-System-OS/service/messaging"
)

// Config for the in-memory queue implementation.
type Config struct {
	// Capacity bounds the number of in-flight messages.
	Capacity int

	// BlockOnFull selects the backpressure mode: block the producer until
	// space frees, or fail fast with messaging.ErrQueueFull.
	BlockOnFull bool

	// MaxRetries bounds redelivery of nacked messages.
	MaxRetries int

	// RetryDelay is the pause before a nacked message is requeued.
	RetryDelay time.Duration

	// DeadLetter keeps messages that exhausted their retries instead of
	// dropping them.
	DeadLetter bool
}

// DefaultConfig returns the standard configuration: ten in-flight messages,
// blocking producers, three redeliveries.
func DefaultConfig() Config {
	return Config{
		Capacity:    10,
		BlockOnFull: true,
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
	}
}

// Message implements messaging.Message for the in-memory queue.
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack reports a processing failure. Under the retry limit the message is
// requeued after the configured delay; past it the message lands in the dead
// letter buffer when enabled, otherwise it is dropped.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.retryCount++

	if m.retryCount <= m.queue.config.MaxRetries {
		go func() {
			time.Sleep(m.queue.config.RetryDelay)
			redelivery := &Message[T]{
				id:         m.id,
				payload:    m.payload,
				queue:      m.queue,
				retryCount: m.retryCount,
				createdAt:  time.Now(),
			}
			m.queue.messages <- redelivery
		}()
	} else if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	return nil
}

// Queue implements a bounded in-memory messaging.Queue backed by a buffered
// channel, which gives FIFO delivery per producer and safe multi-producer,
// multi-consumer access for free.
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []*Message[T]
	config   Config
	dlqMu    sync.Mutex
}

// NewQueue creates a new in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Capacity <= 0 {
		config.Capacity = DefaultConfig().Capacity
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Capacity),
		dlq:      make([]*Message[T], 0),
		config:   config,
	}
}

// Publish adds a new item to the queue, applying the configured backpressure
// mode when the queue is at capacity.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	if q.config.BlockOnFull {
		select {
		case q.messages <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case q.messages <- msg:
		return nil
	default:
		return messaging.ErrQueueFull
	}
}

// Consume retrieves a single item from the queue, blocking until one arrives
// or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryConsume retrieves the oldest item without blocking; an empty queue
// yields ok=false and no error.
func (q *Queue[T]) TryConsume(ctx context.Context) (messaging.Message[T], bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	select {
	case msg := <-q.messages:
		return msg, true, nil
	default:
		return nil, false, nil
	}
}

// Size returns the current number of messages in the queue.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter buffer.
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)

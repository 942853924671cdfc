package event

import (
	"context"

	"github.com/kainat5008/Traffic-System-OS/service/messaging"
)

// Publisher is the typed producer/consumer handle of one topic.
type Publisher[T any] struct {
	topic string
	queue messaging.Queue[Event[T]]
}

// NewPublisher wraps a queue as the handle of the named topic.
func NewPublisher[T any](topic string, queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{topic: topic, queue: queue}
}

// Topic returns the topic name this publisher serves.
func (p *Publisher[T]) Topic() string { return p.topic }

// Publish wraps data in an event and appends it to the topic's queue,
// subject to the queue's backpressure mode.
func (p *Publisher[T]) Publish(ctx context.Context, data T) error {
	return p.queue.Publish(ctx, NewEvent(p.topic, data))
}

// Consume blocks until the next event arrives. The message is acknowledged
// before it is returned; consumers that need redelivery on failure use the
// raw queue instead.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

// TryConsume pops the next event without blocking; ok=false means the topic
// is momentarily empty.
func (p *Publisher[T]) TryConsume(ctx context.Context) (*Event[T], bool, error) {
	msg, ok, err := p.queue.TryConsume(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if err = msg.Ack(); err != nil {
		return nil, false, err
	}
	return msg.T(), true, nil
}

// Queue exposes the underlying queue for consumers that manage Ack/Nack
// themselves.
func (p *Publisher[T]) Queue() messaging.Queue[Event[T]] { return p.queue }

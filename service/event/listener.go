package event

import (
	"context"
	"errors"
	"log"
)

// Listener drains one topic in the background and hands every event to a
// handler. It is the single consumer of its topic.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a listener over the publisher's topic.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the background drain loop.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start launches the drain loop.
func (l *Listener[T]) Start() {
	go func() {
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("listener %s: consume: %v", l.publisher.Topic(), err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}

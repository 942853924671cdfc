// Package event layers typed, named topics over the bounded message queues.
// Each topic carries one payload type; the three logical topics of the
// traffic pipeline are violation reports, payment reports and challan status
// notifications.
package event

import (
	"time"

	"github.com/kainat5008/Traffic-System-OS/internal/clock"
	"github.com/kainat5008/Traffic-System-OS/internal/idgen"
)

// Topic names used by the traffic pipeline.
const (
	TopicViolations    = "violations"
	TopicPayments      = "payments"
	TopicChallanStatus = "challan-status"
)

// Event wraps a payload with identity and timing metadata.
type Event[T any] struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

// NewEvent creates an event for the given topic.
func NewEvent[T any](topic string, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.New(),
		Topic:     topic,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}

package event

import (
	"github.com/kainat5008/Traffic-System-OS/service/messaging/memory"
)

type Option func(s *Service)

// WithNewQueueConfig sets the factory producing the queue configuration for
// each newly created topic.
func WithNewQueueConfig(newConfig func(topic string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

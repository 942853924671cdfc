package event

import (
	"reflect"
	"sync"

	"github.com/kainat5008/Traffic-System-OS/service/messaging"
	"github.com/kainat5008/Traffic-System-OS/service/messaging/memory"
)

// Service owns the topic registry: one bounded queue and one typed publisher
// per payload type. Queues are created lazily on first use from the
// configured per-topic queue config.
type Service struct {
	newQueueConfig  func(topic string) memory.Config
	typedQueues     map[reflect.Type]any
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]any
	topics          map[reflect.Type]string
	mux             sync.RWMutex
}

// New creates a topic registry; opts override the default per-topic queue
// configuration.
func New(opts ...Option) *Service {
	ret := &Service{
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
		typedQueues:     make(map[reflect.Type]any),
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
		topics:          make(map[reflect.Type]string),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType != nil && rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// QueueOf returns the queue backing the named topic for payload type T,
// creating it on first use. The same queue is returned on every later call
// regardless of the topic argument: one payload type maps to one topic.
func QueueOf[T any](s *Service, topic string) messaging.Queue[Event[T]] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedQueues[key]
	s.mux.RUnlock()
	if ok {
		return ret.(messaging.Queue[Event[T]])
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedQueues[key]; ok {
		return ret.(messaging.Queue[Event[T]])
	}
	queue := memory.NewQueue[Event[T]](s.newQueueConfig(topic))
	s.typedQueues[key] = queue
	s.topics[key] = topic
	return queue
}

// PublisherOf returns the typed publisher for the named topic, creating the
// backing queue on first use.
func PublisherOf[T any](s *Service, topic string) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	queue := QueueOf[T](s, topic)
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher(topic, queue)
	s.typedPublishers[key] = publisher
	return publisher
}

// SetListenerOf installs handler as the single background consumer of the
// topic carrying T, replacing any previous listener.
func SetListenerOf[T any](s *Service, topic string, handler func(*Event[T])) {
	key := keyOf[T]()
	s.mux.RLock()
	prev, ok := s.typedListeners[key]
	s.mux.RUnlock()
	if ok {
		prev.(*Listener[T]).Stop()
	}
	publisher := PublisherOf[T](s, topic)
	listener := NewListener(publisher, handler)
	s.mux.Lock()
	s.typedListeners[key] = listener
	s.mux.Unlock()
	listener.Start()
}

// Stop terminates all background listeners.
func (s *Service) Stop() {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, l := range s.typedListeners {
		if stopper, ok := l.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}
}

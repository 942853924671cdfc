package challan

import (
	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/dao"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/service/messaging"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

type Option func(*Service)

// WithConfig overrides the default issuer configuration.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithViolationQueue attaches the violation topic's queue. The service
// consumes it raw so failed handling can be nacked for redelivery.
func WithViolationQueue(q messaging.Queue[event.Event[model.ViolationReport]]) Option {
	return func(s *Service) { s.violations = q }
}

// WithPaymentQueue attaches the payment topic's queue.
func WithPaymentQueue(q messaging.Queue[event.Event[model.PaymentReport]]) Option {
	return func(s *Service) { s.payments = q }
}

// WithStatusPublisher attaches the challan-status publisher.
func WithStatusPublisher(p *event.Publisher[model.ChallanStatus]) Option {
	return func(s *Service) { s.status = p }
}

// WithRecordDAO replaces the default in-memory record store.
func WithRecordDAO(records dao.Service[string, Record]) Option {
	return func(s *Service) { s.records = records }
}

// WithArchive mirrors settled challans to the given archive.
func WithArchive(archive *Archive) Option {
	return func(s *Service) { s.archive = archive }
}

// WithTracker wires the analytics tracker.
func WithTracker(tracker *stats.Tracker) Option {
	return func(s *Service) { s.tracker = tracker }
}

// Package challan implements the billing side of the event pipeline: a
// per-vehicle state machine (NoChallan → Issued → Paid) fed by violation and
// payment events, publishing challan status notifications. Issuance is
// idempotent; a violation against a vehicle with an open challan is
// suppressed rather than queued.
package challan

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kainat5008/Traffic-System-OS/internal/clock"
	"github.com/kainat5008/Traffic-System-OS/internal/idgen"
	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/dao"
	"github.com/kainat5008/Traffic-System-OS/service/dao/store"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/service/messaging"
	"github.com/kainat5008/Traffic-System-OS/stats"
	"github.com/kainat5008/Traffic-System-OS/tracing"
)

// Config represents challan issuer configuration.
type Config struct {
	// DuePeriod is how long after issuance a challan falls due.
	DuePeriod time.Duration `json:"duePeriod" yaml:"duePeriod"`

	// ServiceChargeRate is applied on top of the category base amount.
	ServiceChargeRate float64 `json:"serviceChargeRate" yaml:"serviceChargeRate"`

	// ReopenPaid controls the ambiguous paid-vehicle case: when true a
	// violation against a vehicle whose challan was settled opens a fresh
	// record; when false the vehicle stays exempt after paying.
	ReopenPaid bool `json:"reopenPaid" yaml:"reopenPaid"`
}

// DefaultConfig returns the default issuer configuration: challans fall due
// after three days and a later violation re-opens a settled record.
func DefaultConfig() Config {
	return Config{
		DuePeriod:         3 * 24 * time.Hour,
		ServiceChargeRate: 0.17,
		ReopenPaid:        true,
	}
}

// UnmarshalYAML accepts durations in time.ParseDuration notation.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		DuePeriod         string  `yaml:"duePeriod"`
		ServiceChargeRate float64 `yaml:"serviceChargeRate"`
		ReopenPaid        bool    `yaml:"reopenPaid"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.DuePeriod != "" {
		period, err := time.ParseDuration(raw.DuePeriod)
		if err != nil {
			return fmt.Errorf("invalid duePeriod: %w", err)
		}
		c.DuePeriod = period
	}
	c.ServiceChargeRate = raw.ServiceChargeRate
	c.ReopenPaid = raw.ReopenPaid
	return nil
}

// Service consumes violation and payment events and reconciles the challan
// records. It is the single consumer of both queues.
type Service struct {
	config  Config
	records dao.Service[string, Record]

	violations messaging.Queue[event.Event[model.ViolationReport]]
	payments   messaging.Queue[event.Event[model.PaymentReport]]
	status     *event.Publisher[model.ChallanStatus]

	archive *Archive
	tracker *stats.Tracker

	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

// New creates a challan issuer service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.violations == nil {
		return nil, fmt.Errorf("violations queue is required")
	}
	if s.payments == nil {
		return nil, fmt.Errorf("payments queue is required")
	}
	if s.status == nil {
		return nil, fmt.Errorf("status publisher is required")
	}
	if s.records == nil {
		s.records = store.NewMemoryStore(func(r *Record) string { return r.VehicleID }).
			WithMatcher(matchRecord)
	}
	return s, nil
}

func matchRecord(r *Record, parameters []*dao.Parameter) bool {
	for _, p := range parameters {
		if p.Name != "State" {
			continue
		}
		if value, ok := p.Value.(string); ok && r.State().String() != value {
			return false
		}
	}
	return true
}

// Start launches one consumer worker per queue. Workers stop when ctx is
// done or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-s.shutdownCh
		cancel()
	}()

	s.workerWg.Add(2)
	go s.consumeViolations(ctx)
	go s.consumePayments(ctx)
	return nil
}

// Shutdown stops the workers and waits for them to drain.
func (s *Service) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
	s.workerWg.Wait()
}

func (s *Service) consumeViolations(ctx context.Context) {
	defer s.workerWg.Done()
	for {
		msg, err := s.violations.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err := s.handleViolation(ctx, &msg.T().Data); err != nil {
			log.Printf("challan: violation for %s: %v", msg.T().Data.VehicleID, err)
			_ = msg.Nack(err)
			continue
		}
		_ = msg.Ack()
	}
}

func (s *Service) consumePayments(ctx context.Context) {
	defer s.workerWg.Done()
	for {
		msg, err := s.payments.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err := s.handlePayment(ctx, &msg.T().Data); err != nil {
			log.Printf("challan: payment for %s: %v", msg.T().Data.VehicleID, err)
			_ = msg.Nack(err)
			continue
		}
		_ = msg.Ack()
	}
}

// handleViolation drives the NoChallan→Issued transition. A violation for a
// vehicle with an open challan is a duplicate and is silently discarded; a
// violation for a paid vehicle either re-opens a fresh record or leaves the
// vehicle exempt, per configuration.
func (s *Service) handleViolation(ctx context.Context, report *model.ViolationReport) (err error) {
	ctx, span := tracing.StartSpan(ctx, "challan.handleViolation", "CONSUMER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"vehicle.id": report.VehicleID})

	if report.Category.Exempt() {
		return nil
	}

	existing, err := s.records.Load(ctx, report.VehicleID)
	if err != nil {
		return err
	}
	switch existing.State() {
	case Issued:
		// Duplicate while open: suppress.
		return nil
	case Paid:
		if !s.config.ReopenPaid {
			return nil
		}
		// A paid vehicle caught again is a new incident.
	}

	now := clock.Now()
	record := &Record{
		ID:        idgen.New(),
		VehicleID: report.VehicleID,
		Category:  report.Category,
		Amount:    amountFor(report.Category, s.config.ServiceChargeRate),
		IssuedAt:  now,
		DueAt:     now.Add(s.config.DuePeriod),
	}
	if err = s.records.Save(ctx, record); err != nil {
		return err
	}
	s.tracker.Update(stats.Delta{Issued: 1})
	log.Printf("challan: issued to vehicle %s amount %.2f", record.VehicleID, record.Amount)
	return s.status.Publish(ctx, model.ChallanStatus{VehicleID: record.VehicleID, Paid: false})
}

// handlePayment drives the Issued→Paid transition. Payments for unknown or
// already-settled records are ignored, making reconciliation idempotent.
func (s *Service) handlePayment(ctx context.Context, report *model.PaymentReport) (err error) {
	ctx, span := tracing.StartSpan(ctx, "challan.handlePayment", "CONSUMER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"vehicle.id": report.VehicleID})

	if !report.Paid {
		log.Printf("challan: payment failed for vehicle %s", report.VehicleID)
		return nil
	}

	record, err := s.records.Load(ctx, report.VehicleID)
	if err != nil {
		return err
	}
	if record.State() != Issued {
		return nil
	}

	// Stored records are never mutated in place: the violation worker and
	// external readers hold the same pointer, so the transition goes
	// through a copy swapped in via Save.
	settled := *record
	settled.Paid = true
	settled.PaidAt = clock.Now()
	if err = s.records.Save(ctx, &settled); err != nil {
		return err
	}
	s.tracker.Update(stats.Delta{Paid: 1})
	log.Printf("challan: vehicle %s paid %.2f", settled.VehicleID, settled.Amount)

	if s.archive != nil {
		if archiveErr := s.archive.Store(ctx, &settled); archiveErr != nil {
			// Archival is best effort; the in-memory record is already
			// settled.
			log.Printf("challan: archive %s: %v", settled.ID, archiveErr)
		}
	}
	return s.status.Publish(ctx, model.ChallanStatus{VehicleID: settled.VehicleID, Paid: true})
}

// Lookup returns the vehicle's current record, or nil when none exists.
func (s *Service) Lookup(ctx context.Context, vehicleID string) (*Record, error) {
	return s.records.Load(ctx, vehicleID)
}

// StateOf reports the vehicle's position in the challan state machine.
func (s *Service) StateOf(ctx context.Context, vehicleID string) (State, error) {
	record, err := s.records.Load(ctx, vehicleID)
	if err != nil {
		return NoChallan, err
	}
	return record.State(), nil
}

// Outstanding lists all open (issued, unpaid) records.
func (s *Service) Outstanding(ctx context.Context) ([]*Record, error) {
	return s.records.List(ctx, dao.NewParameter("State", Issued.String()))
}

// Records lists every record, settled ones included.
func (s *Service) Records(ctx context.Context) ([]*Record, error) {
	return s.records.List(ctx)
}

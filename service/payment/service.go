// Package payment simulates the settlement side of the pipeline: it watches
// challan status notifications and, for every newly issued challan, submits
// a payment report after a configurable delay. It stands in for the
// interactive portal and payment gateway of the full system.
package payment

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/event"
)

// Config represents payment simulator configuration.
type Config struct {
	// SettleDelay is how long after issuance a simulated payment arrives.
	SettleDelay time.Duration `json:"settleDelay" yaml:"settleDelay"`
}

// DefaultConfig returns the default simulator configuration.
func DefaultConfig() Config {
	return Config{SettleDelay: time.Second}
}

// UnmarshalYAML accepts durations in time.ParseDuration notation.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		SettleDelay string `yaml:"settleDelay"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.SettleDelay != "" {
		delay, err := time.ParseDuration(raw.SettleDelay)
		if err != nil {
			return fmt.Errorf("invalid settleDelay: %w", err)
		}
		c.SettleDelay = delay
	}
	return nil
}

// Service consumes the challan-status topic and produces payment reports.
type Service struct {
	config   Config
	statuses *event.Publisher[model.ChallanStatus]
	payments *event.Publisher[model.PaymentReport]

	timerWg    sync.WaitGroup
	shutdownCh chan struct{}
}

// New creates a payment simulator.
func New(statuses *event.Publisher[model.ChallanStatus], payments *event.Publisher[model.PaymentReport], config Config) (*Service, error) {
	if statuses == nil {
		return nil, fmt.Errorf("status publisher is required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payments publisher is required")
	}
	if config.SettleDelay < 0 {
		config.SettleDelay = DefaultConfig().SettleDelay
	}
	return &Service{
		config:     config,
		statuses:   statuses,
		payments:   payments,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Start drains the status topic until ctx is done or Shutdown is called.
// Each issuance notification schedules one settlement.
func (s *Service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		status, err := s.statuses.Consume(ctx)
		if err != nil {
			s.timerWg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if status == nil || status.Data.Paid {
			// Settlement confirmations circle back on the same topic.
			continue
		}
		s.schedule(ctx, status.Data.VehicleID)
	}
}

// Shutdown stops the simulator and waits for pending settlements to be
// abandoned or delivered.
func (s *Service) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
	s.timerWg.Wait()
}

func (s *Service) schedule(ctx context.Context, vehicleID string) {
	s.timerWg.Add(1)
	go func() {
		defer s.timerWg.Done()
		timer := time.NewTimer(s.config.SettleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		report := model.PaymentReport{VehicleID: vehicleID, Paid: true}
		if err := s.payments.Publish(ctx, report); err != nil {
			log.Printf("payment: publish for %s: %v", vehicleID, err)
			return
		}
		log.Printf("payment: vehicle %s settled challan", vehicleID)
	}()
}

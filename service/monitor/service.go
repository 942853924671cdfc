// Package monitor implements the speed enforcement worker: it periodically
// sweeps the active-vehicle roster under an ActiveRosterAccess grant and
// publishes a violation report for every vehicle exceeding its category
// limit.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/coordinator"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/service/traffic"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

// Config represents speed monitor configuration.
type Config struct {
	// PollInterval is how often the monitor attempts a roster sweep.
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{PollInterval: 200 * time.Millisecond}
}

// UnmarshalYAML accepts durations in time.ParseDuration notation.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		PollInterval string `yaml:"pollInterval"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.PollInterval != "" {
		interval, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid pollInterval: %w", err)
		}
		c.PollInterval = interval
	}
	return nil
}

// Service is the speed monitor worker.
type Service struct {
	config     Config
	coord      *coordinator.Coordinator
	state      *traffic.State
	violations *event.Publisher[model.ViolationReport]
	tracker    *stats.Tracker
	shutdownCh chan struct{}
}

// New creates a speed monitor.
func New(coord *coordinator.Coordinator, state *traffic.State, violations *event.Publisher[model.ViolationReport], tracker *stats.Tracker, config Config) (*Service, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator is required")
	}
	if state == nil {
		return nil, fmt.Errorf("traffic state is required")
	}
	if violations == nil {
		return nil, fmt.Errorf("violations publisher is required")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	return &Service{
		config:     config,
		coord:      coord,
		state:      state,
		violations: violations,
		tracker:    tracker,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Start runs the sweep loop until ctx is done or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("monitor: sweep: %v", err)
			}
		}
	}
}

// Shutdown stops the sweep loop.
func (s *Service) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
}

// Sweep scans the roster once. A denied roster grant is not an error; the
// sweep is simply skipped until the next tick, which is the coordinator's
// poll-and-retry contract. Reports are published after the grant is
// released so queue backpressure never extends the critical section.
func (s *Service) Sweep(ctx context.Context) error {
	ok, err := s.coord.Acquire(ctx, model.SpeedMonitor, model.ActiveRosterAccess)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var reports []model.ViolationReport
	for _, v := range s.state.Roster() {
		if v.Category.Exempt() || v.Reported || v.OutOfOrder {
			continue
		}
		if v.CurrentSpeed <= v.MaxSpeed {
			continue
		}
		v.Reported = true
		reports = append(reports, model.ViolationReport{
			VehicleID:     v.Plate,
			Category:      v.Category,
			MeasuredSpeed: v.CurrentSpeed,
		})
	}
	s.coord.Release(model.SpeedMonitor, model.ActiveRosterAccess)

	for i := range reports {
		if err := s.violations.Publish(ctx, reports[i]); err != nil {
			return fmt.Errorf("failed to publish violation for %s: %w", reports[i].VehicleID, err)
		}
		s.tracker.Update(stats.Delta{Violations: 1})
		log.Printf("monitor: violation by vehicle %s at %.1f", reports[i].VehicleID, reports[i].MeasuredSpeed)
	}
	return nil
}

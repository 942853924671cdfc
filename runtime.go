package traffix

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kainat5008/Traffic-System-OS/internal/clock"
	"github.com/kainat5008/Traffic-System-OS/service/challan"
	"github.com/kainat5008/Traffic-System-OS/service/coordinator"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/service/ledger"
	"github.com/kainat5008/Traffic-System-OS/service/monitor"
	"github.com/kainat5008/Traffic-System-OS/service/payment"
	"github.com/kainat5008/Traffic-System-OS/service/traffic"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

// Runtime owns the running pipeline: the coordinator, the topic registry and
// the worker services. It is created by Service.New and torn down with
// Shutdown.
type Runtime struct {
	config      *Config
	ledger      *ledger.Ledger
	coordinator *coordinator.Coordinator
	events      *event.Service
	traffic     *traffic.State
	lights      *traffic.LightController
	simClock    *clock.SimClock
	tracker     *stats.Tracker
	challans    *challan.Service
	monitor     *monitor.Service
	payments    *payment.Service

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	started bool
}

// Start brings up the challan issuer, the speed monitor and the payment
// simulator. It returns once the workers are running; failures after that
// surface from Shutdown.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("runtime already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	r.cancel = cancel
	r.group = group
	r.started = true

	if err := r.challans.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to start challan issuer: %w", err)
	}
	group.Go(func() error {
		if err := r.monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("speed monitor: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := r.payments.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("payment simulator: %w", err)
		}
		return nil
	})
	return nil
}

// Shutdown stops the workers and waits for them to drain. It returns the
// first worker failure, if any. Safe to call more than once.
func (r *Runtime) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	r.started = false

	r.cancel()
	r.monitor.Shutdown()
	r.payments.Shutdown()
	r.challans.Shutdown()
	err := r.group.Wait()
	r.events.Stop()
	return err
}

// Coordinator returns the deadlock-avoiding resource coordinator.
func (r *Runtime) Coordinator() *coordinator.Coordinator {
	return r.coordinator
}

// Ledger returns the underlying resource ledger.
func (r *Runtime) Ledger() *ledger.Ledger {
	return r.ledger
}

// Events returns the typed topic registry.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// Traffic returns the shared road state.
func (r *Runtime) Traffic() *traffic.State {
	return r.traffic
}

// Lights returns the intersection light controller.
func (r *Runtime) Lights() *traffic.LightController {
	return r.lights
}

// SimClock returns the simulated wall clock driving peak-hour rules.
func (r *Runtime) SimClock() *clock.SimClock {
	return r.simClock
}

// Challans returns the challan issuer for record lookups.
func (r *Runtime) Challans() *challan.Service {
	return r.challans
}

// Monitor returns the speed monitor.
func (r *Runtime) Monitor() *monitor.Service {
	return r.monitor
}

// Stats returns the shared counter tracker.
func (r *Runtime) Stats() *stats.Tracker {
	return r.tracker
}

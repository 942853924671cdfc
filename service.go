package traffix

import (
	"fmt"

	"github.com/viant/afs"

	"github.com/kainat5008/Traffic-System-OS/internal/clock"
	"github.com/kainat5008/Traffic-System-OS/internal/idgen"
	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/challan"
	"github.com/kainat5008/Traffic-System-OS/service/coordinator"
	"github.com/kainat5008/Traffic-System-OS/service/dao"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/service/ledger"
	"github.com/kainat5008/Traffic-System-OS/service/messaging/memory"
	"github.com/kainat5008/Traffic-System-OS/service/monitor"
	"github.com/kainat5008/Traffic-System-OS/service/payment"
	"github.com/kainat5008/Traffic-System-OS/service/traffic"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

// Service assembles the coordinator and the event pipeline.
type Service struct {
	config    *Config
	configErr error

	archiveFS     afs.Service
	records       dao.Service[string, challan.Record]
	statsCallback func(stats.Tracker)

	simHour   int
	simMinute int

	runtime *Runtime
}

// New creates a fully wired service. The coordinator ledger, the typed topic
// registry and the three pipeline workers are constructed here; Start on the
// returned runtime brings the workers up.
func New(options ...Option) (*Service, error) {
	s := &Service{simHour: 6}
	for _, option := range options {
		option(s)
	}
	if s.configErr != nil {
		return nil, s.configErr
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.Init()
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	cfg := s.config

	ldg := ledger.New(int(model.NumRoles), int(model.NumResourceKinds))
	if err := ldg.SetTotals(cfg.Coordinator.Totals); err != nil {
		return fmt.Errorf("failed to declare resource totals: %w", err)
	}
	for role := model.Role(0); role < model.NumRoles; role++ {
		if err := ldg.SetMaximum(role, cfg.Coordinator.MaxDemand); err != nil {
			return fmt.Errorf("failed to declare maximum for %v: %w", role, err)
		}
	}
	coord := coordinator.New(ldg)

	events := event.New(event.WithNewQueueConfig(func(topic string) memory.Config {
		queueConfig := memory.DefaultConfig()
		queueConfig.Capacity = cfg.Queue.Capacity
		queueConfig.BlockOnFull = *cfg.Queue.BlockOnFull
		queueConfig.MaxRetries = *cfg.Queue.MaxRetries
		return queueConfig
	}))
	violations := event.PublisherOf[model.ViolationReport](events, event.TopicViolations)
	payments := event.PublisherOf[model.PaymentReport](events, event.TopicPayments)
	statuses := event.PublisherOf[model.ChallanStatus](events, event.TopicChallanStatus)

	tracker := &stats.Tracker{RunID: idgen.New(), StartedAt: clock.Now()}
	if s.statsCallback != nil {
		tracker.OnChange(s.statsCallback)
	}

	challanOptions := []challan.Option{
		challan.WithConfig(cfg.Challan),
		challan.WithViolationQueue(violations.Queue()),
		challan.WithPaymentQueue(payments.Queue()),
		challan.WithStatusPublisher(statuses),
		challan.WithTracker(tracker),
	}
	if s.records != nil {
		challanOptions = append(challanOptions, challan.WithRecordDAO(s.records))
	}
	if cfg.ArchiveURL != "" {
		fs := s.archiveFS
		if fs == nil {
			fs = afs.New()
		}
		archive, err := challan.NewArchive(fs, cfg.ArchiveURL)
		if err != nil {
			return fmt.Errorf("failed to open challan archive: %w", err)
		}
		challanOptions = append(challanOptions, challan.WithArchive(archive))
	}
	challans, err := challan.New(challanOptions...)
	if err != nil {
		return fmt.Errorf("failed to create challan issuer: %w", err)
	}

	state := traffic.NewState()
	simClock := clock.NewSimClock(s.simHour, s.simMinute)

	speedMonitor, err := monitor.New(coord, state, violations, tracker, cfg.Monitor)
	if err != nil {
		return fmt.Errorf("failed to create speed monitor: %w", err)
	}
	simulator, err := payment.New(statuses, payments, cfg.Payment)
	if err != nil {
		return fmt.Errorf("failed to create payment simulator: %w", err)
	}

	s.runtime = &Runtime{
		config:      cfg,
		ledger:      ldg,
		coordinator: coord,
		events:      events,
		traffic:     state,
		lights:      traffic.NewLightController(),
		simClock:    simClock,
		tracker:     tracker,
		challans:    challans,
		monitor:     speedMonitor,
		payments:    simulator,
	}
	return nil
}

// Runtime returns the assembled runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

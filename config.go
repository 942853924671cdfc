package traffix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/challan"
	"github.com/kainat5008/Traffic-System-OS/service/monitor"
	"github.com/kainat5008/Traffic-System-OS/service/payment"
)

// Config represents runtime configuration for the coordinator and the event
// pipeline. Zero values are filled in from DefaultConfig by Init.
type Config struct {
	Coordinator CoordinatorConfig `json:"coordinator" yaml:"coordinator"`
	Queue       QueueConfig       `json:"queue" yaml:"queue"`
	Challan     challan.Config    `json:"challan" yaml:"challan"`
	Monitor     monitor.Config    `json:"monitor" yaml:"monitor"`
	Payment     payment.Config    `json:"payment" yaml:"payment"`

	// ArchiveURL, when set, enables the settled-challan archive at the
	// supplied afs location (e.g. file:///var/lib/traffix/challans or
	// mem://localhost/challans in tests).
	ArchiveURL string `json:"archiveURL,omitempty" yaml:"archiveURL,omitempty"`
}

// CoordinatorConfig declares the resource ledger shape. Declarations are
// fatal when malformed: a coordinator with an inconsistent ledger cannot
// give any safety guarantee, so there is no degraded mode.
type CoordinatorConfig struct {
	// Totals is the system-wide unit count per resource kind, indexed by
	// model.ResourceKind.
	Totals []int `json:"totals" yaml:"totals"`

	// MaxDemand is the per-role maximum claim vector, applied to every
	// role. Per-role overrides go through Runtime.Ledger().SetMaximum.
	MaxDemand []int `json:"maxDemand" yaml:"maxDemand"`
}

// QueueConfig shapes every topic queue in the event service. BlockOnFull
// and MaxRetries are pointers because false and zero are valid explicit
// choices; nil means absent and Init fills the default.
type QueueConfig struct {
	// Capacity bounds in-flight messages per topic.
	Capacity int `json:"capacity" yaml:"capacity"`

	// BlockOnFull selects producer backpressure over fail-fast rejection.
	BlockOnFull *bool `json:"blockOnFull,omitempty" yaml:"blockOnFull,omitempty"`

	// MaxRetries bounds redelivery of nacked messages before dead-lettering.
	MaxRetries *int `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
}

// DefaultConfig returns the default runtime configuration: one unit of lane
// access and one unit of roster access, claimable in full by every role, and
// bounded blocking queues.
func DefaultConfig() *Config {
	return &Config{
		Coordinator: CoordinatorConfig{
			Totals:    []int{1, 1},
			MaxDemand: []int{1, 1},
		},
		Queue: QueueConfig{
			Capacity:    10,
			BlockOnFull: boolPtr(true),
			MaxRetries:  intPtr(3),
		},
		Challan: challan.DefaultConfig(),
		Monitor: monitor.DefaultConfig(),
		Payment: payment.DefaultConfig(),
	}
}

// Init fills zero-valued sections with defaults.
func (c *Config) Init() {
	defaults := DefaultConfig()
	if len(c.Coordinator.Totals) == 0 {
		c.Coordinator.Totals = defaults.Coordinator.Totals
	}
	if len(c.Coordinator.MaxDemand) == 0 {
		c.Coordinator.MaxDemand = defaults.Coordinator.MaxDemand
	}
	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = defaults.Queue.Capacity
	}
	if c.Queue.BlockOnFull == nil {
		c.Queue.BlockOnFull = defaults.Queue.BlockOnFull
	}
	if c.Queue.MaxRetries == nil {
		c.Queue.MaxRetries = defaults.Queue.MaxRetries
	}
	if c.Challan.DuePeriod == 0 && c.Challan.ServiceChargeRate == 0 {
		c.Challan = defaults.Challan
	}
	if c.Monitor.PollInterval == 0 {
		c.Monitor = defaults.Monitor
	}
	if c.Payment.SettleDelay == 0 {
		c.Payment = defaults.Payment
	}
}

// Validate reports the first malformed declaration.
func (c *Config) Validate() error {
	if len(c.Coordinator.Totals) != int(model.NumResourceKinds) {
		return fmt.Errorf("coordinator: totals: expected %d resource kinds, had %d", model.NumResourceKinds, len(c.Coordinator.Totals))
	}
	if len(c.Coordinator.MaxDemand) != int(model.NumResourceKinds) {
		return fmt.Errorf("coordinator: maxDemand: expected %d resource kinds, had %d", model.NumResourceKinds, len(c.Coordinator.MaxDemand))
	}
	for kind, total := range c.Coordinator.Totals {
		if total < 0 {
			return fmt.Errorf("coordinator: totals[%v]: negative unit count %d", model.ResourceKind(kind), total)
		}
		if c.Coordinator.MaxDemand[kind] > total {
			return fmt.Errorf("coordinator: maxDemand[%v]: claim %d exceeds total %d", model.ResourceKind(kind), c.Coordinator.MaxDemand[kind], total)
		}
		if c.Coordinator.MaxDemand[kind] < 0 {
			return fmt.Errorf("coordinator: maxDemand[%v]: negative claim %d", model.ResourceKind(kind), c.Coordinator.MaxDemand[kind])
		}
	}
	if c.Queue.Capacity <= 0 {
		return fmt.Errorf("queue: capacity must be positive, had %d", c.Queue.Capacity)
	}
	if c.Queue.MaxRetries != nil && *c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue: maxRetries must not be negative, had %d", *c.Queue.MaxRetries)
	}
	if c.Challan.ServiceChargeRate < 0 {
		return fmt.Errorf("challan: serviceChargeRate must not be negative, had %v", c.Challan.ServiceChargeRate)
	}
	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("monitor: pollInterval must be positive, had %v", c.Monitor.PollInterval)
	}
	if c.Payment.SettleDelay <= 0 {
		return fmt.Errorf("payment: settleDelay must be positive, had %v", c.Payment.SettleDelay)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// NewConfigFromYAML loads, defaults and validates configuration from a YAML
// file.
func NewConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %v: %w", path, err)
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
	}
	config.Init()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", path, err)
	}
	return config, nil
}

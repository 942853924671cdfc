package traffix

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(*Config)
		expectError string
	}{
		{
			description: "totals wrong arity",
			mutate:      func(c *Config) { c.Coordinator.Totals = []int{1} },
			expectError: "totals",
		},
		{
			description: "negative total",
			mutate:      func(c *Config) { c.Coordinator.Totals = []int{-1, 1} },
			expectError: "negative unit count",
		},
		{
			description: "claim above total",
			mutate:      func(c *Config) { c.Coordinator.MaxDemand = []int{2, 1} },
			expectError: "exceeds total",
		},
		{
			description: "zero queue capacity",
			mutate:      func(c *Config) { c.Queue.Capacity = -1 },
			expectError: "capacity",
		},
		{
			description: "negative poll interval",
			mutate:      func(c *Config) { c.Monitor.PollInterval = -time.Second },
			expectError: "pollInterval",
		},
	}

	for _, testCase := range testCases {
		config := DefaultConfig()
		testCase.mutate(config)
		err := config.Validate()
		require.Error(t, err, testCase.description)
		assert.Contains(t, err.Error(), testCase.expectError, testCase.description)
	}
}

func TestConfigInitFillsDefaults(t *testing.T) {
	config := &Config{}
	config.Init()
	require.NoError(t, config.Validate())
	assert.Equal(t, []int{1, 1}, config.Coordinator.Totals)
	assert.Equal(t, 10, config.Queue.Capacity)
	require.NotNil(t, config.Queue.BlockOnFull)
	assert.True(t, *config.Queue.BlockOnFull)
	require.NotNil(t, config.Queue.MaxRetries)
	assert.Equal(t, 3, *config.Queue.MaxRetries)
	assert.Equal(t, 3*24*time.Hour, config.Challan.DuePeriod)
}

func TestConfigInitKeepsExplicitQueueChoices(t *testing.T) {
	config := &Config{
		Queue: QueueConfig{
			BlockOnFull: boolPtr(false),
			MaxRetries:  intPtr(0),
		},
	}
	config.Init()
	require.NoError(t, config.Validate())

	// Only the absent capacity gets a default; explicit false and zero
	// stand.
	assert.Equal(t, 10, config.Queue.Capacity)
	assert.False(t, *config.Queue.BlockOnFull)
	assert.Equal(t, 0, *config.Queue.MaxRetries)
}

func TestNewConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
coordinator:
  totals: [2, 1]
  maxDemand: [1, 1]
queue:
  capacity: 32
  blockOnFull: true
challan:
  duePeriod: 48h
  serviceChargeRate: 0.17
  reopenPaid: false
archiveURL: mem://localhost/challans
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	config, err := NewConfigFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, config.Coordinator.Totals)
	assert.Equal(t, 32, config.Queue.Capacity)
	require.NotNil(t, config.Queue.BlockOnFull)
	assert.True(t, *config.Queue.BlockOnFull)
	assert.Equal(t, 48*time.Hour, config.Challan.DuePeriod)
	assert.False(t, config.Challan.ReopenPaid)
	assert.Equal(t, "mem://localhost/challans", config.ArchiveURL)
	// Unset sections come back defaulted.
	assert.Equal(t, 200*time.Millisecond, config.Monitor.PollInterval)
}

func TestNewConfigFromYAMLMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coordinator: [not, a, map]"), 0o644))
	_, err := NewConfigFromYAML(path)
	require.Error(t, err)
}

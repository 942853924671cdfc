package coordinator

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/ledger"
	"github.com/kainat5008/Traffic-System-OS/tracing"
)

func newCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	l := ledger.New(int(model.NumRoles), int(model.NumResourceKinds))
	require.NoError(t, l.SetTotals([]int{1, 1}))
	for p := 0; p < int(model.NumRoles); p++ {
		require.NoError(t, l.SetMaximum(model.Role(p), []int{1, 1}))
	}
	return New(l)
}

func TestAcquireRelease(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	ok, err := c.Acquire(ctx, model.VehicleSpawner, model.LaneAccess)
	require.NoError(t, err)
	require.True(t, ok)

	// The unit is held: another role must be denied, not blocked.
	ok, err = c.Acquire(ctx, model.TrafficLightController, model.LaneAccess)
	require.NoError(t, err)
	assert.False(t, ok)

	// The other kind is still free.
	ok, err = c.Acquire(ctx, model.SpeedMonitor, model.ActiveRosterAccess)
	require.NoError(t, err)
	assert.True(t, ok)

	c.Release(model.VehicleSpawner, model.LaneAccess)

	// Retry after release succeeds.
	ok, err = c.Acquire(ctx, model.TrafficLightController, model.LaneAccess)
	require.NoError(t, err)
	assert.True(t, ok)

	c.Release(model.TrafficLightController, model.LaneAccess)
	c.Release(model.SpeedMonitor, model.ActiveRosterAccess)

	s := c.Ledger().Snapshot()
	assert.Equal(t, s.Total, s.Available)
}

func TestAcquireCancelledContextRollsBack(t *testing.T) {
	c := newCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Acquire(ctx, model.VehicleSpawner, model.LaneAccess)
	assert.False(t, ok)
	assert.Error(t, err)

	// The failed gate wait must not leak a logical grant.
	s := c.Ledger().Snapshot()
	assert.Equal(t, s.Total, s.Available)
}

func TestContendedAcquireMutualExclusion(t *testing.T) {
	c := newCoordinator(t)
	ctx := context.Background()

	var inSection int
	var maxInSection int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for p := 0; p < int(model.NumRoles); p++ {
		wg.Add(1)
		go func(role model.Role) {
			defer wg.Done()
			granted := 0
			for granted < 20 {
				ok, err := c.Acquire(ctx, role, model.LaneAccess)
				if err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				if !ok {
					continue // denied, retry
				}
				mu.Lock()
				inSection++
				if inSection > maxInSection {
					maxInSection = inSection
				}
				mu.Unlock()
				runtime.Gosched()
				mu.Lock()
				inSection--
				mu.Unlock()
				c.Release(role, model.LaneAccess)
				granted++
			}
		}(model.Role(p))
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection, "gate must admit one holder at a time")
	s := c.Ledger().Snapshot()
	assert.Equal(t, s.Total, s.Available)
}

func TestAcquireEmitsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, tracing.InitWithExporter("coordinator-test", "0.0.1", exporter))

	c := newCoordinator(t)
	granted, err := c.Acquire(context.Background(), model.Portal, model.LaneAccess)
	require.NoError(t, err)
	require.True(t, granted)
	c.Release(model.Portal, model.LaneAccess)

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "coordinator.Acquire")
}

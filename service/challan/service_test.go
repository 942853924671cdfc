package challan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/event"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

type fixture struct {
	service    *Service
	violations *event.Publisher[model.ViolationReport]
	payments   *event.Publisher[model.PaymentReport]
	status     *event.Publisher[model.ChallanStatus]
	tracker    *stats.Tracker
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()
	events := event.New()
	violations := event.PublisherOf[model.ViolationReport](events, event.TopicViolations)
	payments := event.PublisherOf[model.PaymentReport](events, event.TopicPayments)
	status := event.PublisherOf[model.ChallanStatus](events, event.TopicChallanStatus)
	tracker := &stats.Tracker{}

	options = append([]Option{
		WithViolationQueue(violations.Queue()),
		WithPaymentQueue(payments.Queue()),
		WithStatusPublisher(status),
		WithTracker(tracker),
	}, options...)
	service, err := New(options...)
	require.NoError(t, err)

	return &fixture{
		service:    service,
		violations: violations,
		payments:   payments,
		status:     status,
		tracker:    tracker,
	}
}

func TestNewRequiresQueues(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestIssueOnFirstViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	require.NoError(t, f.service.handleViolation(ctx, &report))

	record, err := f.service.Lookup(ctx, "LEA-0001")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, Issued, record.State())
	assert.InDelta(t, 5850, record.Amount, 0.001) // 5000 + 17%
	assert.Equal(t, record.IssuedAt.Add(3*24*time.Hour), record.DueAt)

	// Issuance publishes an unpaid status notification.
	status, ok, err := f.status.TryConsume(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.ChallanStatus{VehicleID: "LEA-0001", Paid: false}, status.Data)
}

func TestHeavyAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := model.ViolationReport{VehicleID: "HVY-0001", Category: model.Heavy, MeasuredSpeed: 55}
	require.NoError(t, f.service.handleViolation(ctx, &report))

	record, err := f.service.Lookup(ctx, "HVY-0001")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.InDelta(t, 8190, record.Amount, 0.001) // 7000 + 17%
}

func TestEmergencyExempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := model.ViolationReport{VehicleID: "EMG-0001", Category: model.Emergency, MeasuredSpeed: 120}
	require.NoError(t, f.service.handleViolation(ctx, &report))

	record, err := f.service.Lookup(ctx, "EMG-0001")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestDuplicateViolationSuppressed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	require.NoError(t, f.service.handleViolation(ctx, &report))
	first, err := f.service.Lookup(ctx, "LEA-0001")
	require.NoError(t, err)

	require.NoError(t, f.service.handleViolation(ctx, &report))
	second, err := f.service.Lookup(ctx, "LEA-0001")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "open challan must not be replaced")
	assert.Equal(t, 1, f.tracker.Snapshot().ChallansIssued)

	// Exactly one status notification was published.
	_, ok, err := f.status.TryConsume(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = f.status.TryConsume(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaymentSettlesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	violation := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	require.NoError(t, f.service.handleViolation(ctx, &violation))

	payment := model.PaymentReport{VehicleID: "LEA-0001", Paid: true}
	require.NoError(t, f.service.handlePayment(ctx, &payment))

	record, err := f.service.Lookup(ctx, "LEA-0001")
	require.NoError(t, err)
	assert.Equal(t, Paid, record.State())
	assert.False(t, record.PaidAt.IsZero())
	paidAt := record.PaidAt

	// A duplicate payment is ignored.
	require.NoError(t, f.service.handlePayment(ctx, &payment))
	record, err = f.service.Lookup(ctx, "LEA-0001")
	require.NoError(t, err)
	assert.Equal(t, paidAt, record.PaidAt)
	assert.Equal(t, 1, f.tracker.Snapshot().ChallansPaid)
}

func TestPaymentForUnknownVehicleIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payment := model.PaymentReport{VehicleID: "GHOST-0001", Paid: true}
	require.NoError(t, f.service.handlePayment(ctx, &payment))
	record, err := f.service.Lookup(ctx, "GHOST-0001")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFailedPaymentKeepsChallanOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	violation := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	require.NoError(t, f.service.handleViolation(ctx, &violation))

	payment := model.PaymentReport{VehicleID: "LEA-0001", Paid: false}
	require.NoError(t, f.service.handlePayment(ctx, &payment))

	state, err := f.service.StateOf(ctx, "LEA-0001")
	require.NoError(t, err)
	assert.Equal(t, Issued, state)
}

func TestReopenPaidConfigurable(t *testing.T) {
	violation := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	payment := model.PaymentReport{VehicleID: "LEA-0001", Paid: true}

	t.Run("reopen", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.service.handleViolation(ctx, &violation))
		require.NoError(t, f.service.handlePayment(ctx, &payment))
		require.NoError(t, f.service.handleViolation(ctx, &violation))

		state, err := f.service.StateOf(ctx, "LEA-0001")
		require.NoError(t, err)
		assert.Equal(t, Issued, state, "paid vehicle caught again gets a fresh challan")
	})

	t.Run("exempt", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ReopenPaid = false
		f := newFixture(t, WithConfig(cfg))
		ctx := context.Background()
		require.NoError(t, f.service.handleViolation(ctx, &violation))
		require.NoError(t, f.service.handlePayment(ctx, &payment))
		require.NoError(t, f.service.handleViolation(ctx, &violation))

		state, err := f.service.StateOf(ctx, "LEA-0001")
		require.NoError(t, err)
		assert.Equal(t, Paid, state, "paid vehicle stays exempt")
	})
}

func TestOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"LEA-0001", "LEA-0002"} {
		violation := model.ViolationReport{VehicleID: id, Category: model.Light, MeasuredSpeed: 72}
		require.NoError(t, f.service.handleViolation(ctx, &violation))
	}
	payment := model.PaymentReport{VehicleID: "LEA-0001", Paid: true}
	require.NoError(t, f.service.handlePayment(ctx, &payment))

	open, err := f.service.Outstanding(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "LEA-0002", open[0].VehicleID)

	all, err := f.service.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWorkerLoopEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.service.Start(ctx))
	defer f.service.Shutdown()

	violation := model.ViolationReport{VehicleID: "LEA-0001", Category: model.Light, MeasuredSpeed: 72}
	require.NoError(t, f.violations.Publish(ctx, violation))

	assert.Eventually(t, func() bool {
		state, err := f.service.StateOf(ctx, "LEA-0001")
		return err == nil && state == Issued
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, f.payments.Publish(ctx, model.PaymentReport{VehicleID: "LEA-0001", Paid: true}))

	assert.Eventually(t, func() bool {
		state, err := f.service.StateOf(ctx, "LEA-0001")
		return err == nil && state == Paid
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentViolationAndPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report := model.ViolationReport{VehicleID: "LEA-0042", Category: model.Light, MeasuredSpeed: 80}
	require.NoError(t, f.service.handleViolation(ctx, &report))

	// The two handlers run on separate worker goroutines in normal
	// operation; a settlement must never mutate a record another handler
	// or reader may be holding.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			payment := model.PaymentReport{VehicleID: "LEA-0042", Paid: true}
			assert.NoError(t, f.service.handlePayment(ctx, &payment))
		}()
		go func() {
			defer wg.Done()
			violation := report
			assert.NoError(t, f.service.handleViolation(ctx, &violation))
		}()
		go func() {
			defer wg.Done()
			_, err := f.service.StateOf(ctx, "LEA-0042")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := f.service.Lookup(ctx, "LEA-0042")
	require.NoError(t, err)
	require.NotNil(t, record)
	if record.State() == Paid {
		assert.False(t, record.PaidAt.IsZero())
	} else {
		assert.Equal(t, Issued, record.State())
		assert.True(t, record.PaidAt.IsZero())
	}
}

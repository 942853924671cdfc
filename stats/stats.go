// Package stats keeps aggregated traffic analytics counters (vehicles
// spawned, violations detected, challans issued and paid, vehicles towed)
// for one simulation run. The tracker travels in the context so every
// component that receives the context can update counters atomically without
// a global registry.
package stats

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the spawner,
// speed monitor, challan issuer or fault injector. Fields are signed and can
// therefore be either positive or negative.
type Delta struct {
	Spawned    int
	Violations int
	Issued     int
	Paid       int
	Towed      int
}

// Tracker keeps aggregated simulation counters. It is safe for concurrent
// use.
type Tracker struct {
	// Identification, informative only.
	RunID     string
	StartedAt time.Time

	// Counters, modified via Update().
	VehiclesSpawned    int
	ViolationsDetected int
	ChallansIssued     int
	ChallansPaid       int
	VehiclesTowed      int

	sync.Mutex
	onChange func(Tracker)
}

// Update applies the supplied delta. It is safe to call from multiple
// goroutines. A registered onChange callback is invoked with a copy of the
// updated tracker outside the critical section, so the callback may perform
// slow work (JSON encoding, I/O) without blocking the pipeline.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}

	t.Lock()

	t.VehiclesSpawned += d.Spawned
	t.ViolationsDetected += d.Violations
	t.ChallansIssued += d.Issued
	t.ChallansPaid += d.Paid
	t.VehiclesTowed += d.Towed

	snapshot := *t
	cb := t.onChange

	t.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (t *Tracker) Snapshot() Tracker {
	if t == nil {
		return Tracker{}
	}
	t.Lock()
	defer t.Unlock()
	return *t
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables the callback; only one callback can be active.
func (t *Tracker) OnChange(cb func(Tracker)) {
	if t == nil {
		return
	}
	t.Lock()
	t.onChange = cb
	t.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both. onChange may be nil.
func WithNewTracker(ctx context.Context, runID string, onChange func(Tracker)) (context.Context, *Tracker) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Tracker{
		RunID:     runID,
		StartedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx; ok is false when the context
// carries none.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Tracker)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}

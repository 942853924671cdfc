// Package coordinator binds the ledger's logical grants to physical critical
// sections. The ledger decides whether a grant keeps the system deadlock
// free; the coordinator turns an approved grant into entry of the per-kind
// exclusive gate. Keeping the two layers separate lets the accounting be
// tested by pure simulation and the gates by concurrency stress.
package coordinator

import (
	"context"
	"strconv"

	"github.com/kainat5008/Traffic-System-OS/model"
	"github.com/kainat5008/Traffic-System-OS/service/ledger"
	"github.com/kainat5008/Traffic-System-OS/tracing"
)

// Coordinator mediates every access to a shared collection. Workers call
// Acquire before touching the collection a kind guards and Release after;
// nothing structurally prevents a worker from skipping the call, the
// discipline is procedural.
type Coordinator struct {
	ledger *ledger.Ledger
	gates  []chan struct{}
}

// New creates a coordinator over the given ledger with one capacity-1 gate
// per resource kind.
func New(l *ledger.Ledger) *Coordinator {
	gates := make([]chan struct{}, l.Kinds())
	for i := range gates {
		gates[i] = make(chan struct{}, 1)
	}
	return &Coordinator{ledger: l, gates: gates}
}

// Acquire requests one unit of kind for role. A (false, nil) result is a
// denial: the unit is held or granting it would be unsafe. Denials are
// frequent and expected; the coordinator never queues a denied caller, who
// is expected to back off and retry.
//
// When the ledger approves, Acquire enters the kind's gate. Because the
// ledger accounts for every unit, an approved caller finds the gate free in
// practice; a ctx already cancelled at that point still fails the wait, in
// which case the logical grant is rolled back before the error is returned.
func (c *Coordinator) Acquire(ctx context.Context, role model.Role, kind model.ResourceKind) (granted bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "coordinator.Acquire", "")
	defer func() {
		span.WithAttributes(map[string]string{
			"coordinator.role":    role.String(),
			"coordinator.kind":    kind.String(),
			"coordinator.granted": strconv.FormatBool(granted),
		})
		tracing.EndSpan(span, err)
	}()

	req := c.unitVector(kind)
	if !c.ledger.Request(role, req) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		c.ledger.Release(role, req)
		return false, err
	}
	select {
	case <-ctx.Done():
		c.ledger.Release(role, req)
		return false, ctx.Err()
	case c.gates[kind] <- struct{}{}:
		return true, nil
	}
}

// Release leaves the kind's gate and then returns the unit to the ledger.
// The gate is freed before the bookkeeping is updated; a crash between the
// two leaves the ledger over-counting the role's allocation until the
// process restarts and reinitializes it, but never blocks a waiting holder.
//
// Release must only be called by a role holding a grant for kind.
func (c *Coordinator) Release(role model.Role, kind model.ResourceKind) {
	select {
	case <-c.gates[kind]:
	default:
		// Released without a held gate: a caller bug, but freeing an
		// already-free gate must not block.
	}
	c.ledger.Release(role, c.unitVector(kind))
}

// Ledger exposes the underlying ledger for inspection.
func (c *Coordinator) Ledger() *ledger.Ledger { return c.ledger }

func (c *Coordinator) unitVector(kind model.ResourceKind) []int {
	req := make([]int, c.ledger.Kinds())
	req[kind] = 1
	return req
}

package ledger

import (
	"fmt"
	"sync"

	"github.com/kainat5008/Traffic-System-OS/model"
)

// Ledger tracks total, available, allocated and needed units of every
// resource kind for every role, and admits a request only when the resulting
// state is safe (Banker's algorithm). Requests are committed optimistically
// and rolled back when the safety scan rejects the state.
//
// All mutating operations are linearized by one mutex covering the whole
// ledger. The safety scan reads the entire state, so per-kind locking would
// not help; kind and role counts stay in single digits, which keeps the
// O(roles² × kinds) scan cheap enough to run on every request.
type Ledger struct {
	mu    sync.Mutex
	roles int
	kinds int

	total      []int
	available  []int
	maximum    [][]int
	allocation [][]int
	need       [][]int
}

// Snapshot is a deep copy of the ledger state for inspection and tests.
type Snapshot struct {
	Total      []int
	Available  []int
	Maximum    [][]int
	Allocation [][]int
	Need       [][]int
}

// New creates a ledger for the given number of roles and resource kinds with
// all vectors zeroed. SetTotals and SetMaximum must be called before the
// first Request.
func New(roles, kinds int) *Ledger {
	l := &Ledger{
		roles:      roles,
		kinds:      kinds,
		total:      make([]int, kinds),
		available:  make([]int, kinds),
		maximum:    make([][]int, roles),
		allocation: make([][]int, roles),
		need:       make([][]int, roles),
	}
	for p := 0; p < roles; p++ {
		l.maximum[p] = make([]int, kinds)
		l.allocation[p] = make([]int, kinds)
		l.need[p] = make([]int, kinds)
	}
	return l
}

// SetTotals initializes the total and available vectors. It is a startup
// call; a malformed vector is a fatal configuration error.
func (l *Ledger) SetTotals(totals []int) error {
	if len(totals) != l.kinds {
		return fmt.Errorf("totals has %d kinds, ledger expects %d", len(totals), l.kinds)
	}
	for r, t := range totals {
		if t < 0 {
			return fmt.Errorf("total for kind %d is negative: %d", r, t)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for r, t := range totals {
		l.total[r] = t
		l.available[r] = t
	}
	return nil
}

// SetMaximum records the upper bound a role may ever hold per resource kind
// and recomputes its need vector. Declaring a maximum below the role's
// current allocation is a configuration error.
func (l *Ledger) SetMaximum(role model.Role, maxDemand []int) error {
	if role < 0 || int(role) >= l.roles {
		return fmt.Errorf("role %d out of range", role)
	}
	if len(maxDemand) != l.kinds {
		return fmt.Errorf("maximum for role %v has %d kinds, ledger expects %d", role, len(maxDemand), l.kinds)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for r, m := range maxDemand {
		if m < 0 {
			return fmt.Errorf("maximum for role %v, kind %d is negative: %d", role, r, m)
		}
		if l.allocation[role][r] > m {
			return fmt.Errorf("maximum for role %v, kind %d is %d, below current allocation %d", role, r, m, l.allocation[role][r])
		}
	}
	copy(l.maximum[role], maxDemand)
	for r := 0; r < l.kinds; r++ {
		l.need[role][r] = l.maximum[role][r] - l.allocation[role][r]
	}
	return nil
}

// Request attempts to grant req units to role. It returns false when the
// request exceeds the role's declared maximum, when not enough units are
// free, or when committing it would leave the system in an unsafe state. A
// denial is an expected outcome, not an error: callers retry later.
//
// The grant is committed tentatively, validated with the safety scan, and
// rolled back in full if the scan rejects it, so a denied request leaves the
// ledger state untouched.
func (l *Ledger) Request(role model.Role, req []int) bool {
	if role < 0 || int(role) >= l.roles || len(req) != l.kinds {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for r := 0; r < l.kinds; r++ {
		if req[r] > l.need[role][r] {
			return false // exceeds declared maximum
		}
	}
	for r := 0; r < l.kinds; r++ {
		if req[r] > l.available[r] {
			return false // not enough free units
		}
	}

	for r := 0; r < l.kinds; r++ {
		l.available[r] -= req[r]
		l.allocation[role][r] += req[r]
		l.need[role][r] -= req[r]
	}

	if l.isSafe() {
		return true
	}

	for r := 0; r < l.kinds; r++ {
		l.available[r] += req[r]
		l.allocation[role][r] -= req[r]
		l.need[role][r] += req[r]
	}
	return false
}

// Release returns rel units from role to the pool. Releasing can only move
// the system toward a safer state, so no safety check runs. Callers must not
// release more than was granted; this contract is not verified here.
func (l *Ledger) Release(role model.Role, rel []int) {
	if role < 0 || int(role) >= l.roles || len(rel) != l.kinds {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for r := 0; r < l.kinds; r++ {
		l.allocation[role][r] -= rel[r]
		l.available[r] += rel[r]
		l.need[role][r] += rel[r]
	}
}

// IsSafe reports whether the current state admits an ordering in which every
// role can still obtain its maximum demand and finish.
func (l *Ledger) IsSafe() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isSafe()
}

// isSafe runs the safety scan. Caller holds l.mu.
func (l *Ledger) isSafe() bool {
	work := make([]int, l.kinds)
	copy(work, l.available)
	finish := make([]bool, l.roles)

	progress := true
	for progress {
		progress = false
		for p := 0; p < l.roles; p++ {
			if finish[p] {
				continue
			}
			canFinish := true
			for r := 0; r < l.kinds; r++ {
				if l.need[p][r] > work[r] {
					canFinish = false
					break
				}
			}
			if canFinish {
				for r := 0; r < l.kinds; r++ {
					work[r] += l.allocation[p][r]
				}
				finish[p] = true
				progress = true
			}
		}
	}

	for _, f := range finish {
		if !f {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot{
		Total:      append([]int(nil), l.total...),
		Available:  append([]int(nil), l.available...),
		Maximum:    make([][]int, l.roles),
		Allocation: make([][]int, l.roles),
		Need:       make([][]int, l.roles),
	}
	for p := 0; p < l.roles; p++ {
		s.Maximum[p] = append([]int(nil), l.maximum[p]...)
		s.Allocation[p] = append([]int(nil), l.allocation[p]...)
		s.Need[p] = append([]int(nil), l.need[p]...)
	}
	return s
}

// Kinds returns the number of resource kinds the ledger tracks.
func (l *Ledger) Kinds() int { return l.kinds }

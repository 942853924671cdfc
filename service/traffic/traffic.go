// Package traffic holds the two shared collections the coordinator guards:
// the per-direction lane queues and the active-vehicle roster. Methods here
// take no locks; the caller must hold the matching coordinator grant
// (LaneAccess for lane operations, ActiveRosterAccess for roster
// operations). The discipline is procedural, as in the coordinator itself.
package traffic

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/kainat5008/Traffic-System-OS/internal/clock"
	"github.com/kainat5008/Traffic-System-OS/internal/idgen"
	"github.com/kainat5008/Traffic-System-OS/model"
)

// Directions of the intersection, which double as lane names.
var Directions = []string{"North", "South", "East", "West"}

// laneCapacity bounds each lane queue.
const laneCapacity = 10

// LaneQueue is a bounded FIFO of vehicles waiting at one direction.
type LaneQueue struct {
	vehicles []*model.Vehicle
}

// Enqueue appends a vehicle; it reports false when the lane is full.
func (q *LaneQueue) Enqueue(v *model.Vehicle) bool {
	if len(q.vehicles) >= laneCapacity {
		return false
	}
	q.vehicles = append(q.vehicles, v)
	return true
}

// Dequeue pops the front vehicle, or nil when the lane is empty.
func (q *LaneQueue) Dequeue() *model.Vehicle {
	if len(q.vehicles) == 0 {
		return nil
	}
	v := q.vehicles[0]
	q.vehicles = q.vehicles[1:]
	return v
}

// Len returns the number of queued vehicles.
func (q *LaneQueue) Len() int { return len(q.vehicles) }

// State is the mutable traffic world: lane queues plus the active roster.
type State struct {
	lanes  map[string]*LaneQueue
	roster []*model.Vehicle
}

// NewState creates the traffic world with one empty lane per direction.
func NewState() *State {
	lanes := make(map[string]*LaneQueue, len(Directions))
	for _, d := range Directions {
		lanes[d] = &LaneQueue{}
	}
	return &State{lanes: lanes}
}

// Lane returns the queue of the named direction.
func (s *State) Lane(direction string) *LaneQueue {
	return s.lanes[direction]
}

// Spawn creates a vehicle of the category in the given lane and enqueues it.
// The vehicle's current speed carries the supplied jitter on top of its
// category limit, so a positive jitter produces a violator. Heavy vehicles
// are turned away during peak hours. Callers hold LaneAccess.
func (s *State) Spawn(category model.VehicleCategory, lane string, speedJitter float64, sim *clock.SimClock) (*model.Vehicle, bool) {
	if category == model.Heavy && sim != nil && sim.IsPeak() {
		return nil, false
	}
	q, ok := s.lanes[lane]
	if !ok {
		return nil, false
	}
	v := &model.Vehicle{
		Plate:        newPlate(),
		Category:     category,
		Lane:         lane,
		MaxSpeed:     category.SpeedLimit(),
		CurrentSpeed: category.SpeedLimit() + speedJitter,
	}
	if !q.Enqueue(v) {
		return nil, false
	}
	return v, true
}

// Admit moves up to n vehicles from the lane into the active roster,
// returning how many moved. Callers hold both LaneAccess and
// ActiveRosterAccess.
func (s *State) Admit(lane string, n int) int {
	q, ok := s.lanes[lane]
	if !ok {
		return 0
	}
	moved := 0
	for moved < n {
		v := q.Dequeue()
		if v == nil {
			break
		}
		s.roster = append(s.roster, v)
		moved++
	}
	return moved
}

// Roster returns the active vehicles. The returned slice aliases internal
// state; callers hold ActiveRosterAccess while using it.
func (s *State) Roster() []*model.Vehicle {
	return s.roster
}

// MarkOutOfOrder flags the plated vehicle as broken down; a tow sweep picks
// it up later. Callers hold ActiveRosterAccess.
func (s *State) MarkOutOfOrder(plate string) bool {
	for _, v := range s.roster {
		if v.Plate == plate && !v.OutOfOrder {
			v.OutOfOrder = true
			v.CurrentSpeed = 0
			return true
		}
	}
	return false
}

// TowSweep removes every out-of-order vehicle from the roster and returns
// how many were towed. Callers hold ActiveRosterAccess.
func (s *State) TowSweep() int {
	towed := 0
	kept := s.roster[:0]
	for _, v := range s.roster {
		if v.OutOfOrder {
			v.Towed = true
			towed++
			continue
		}
		kept = append(kept, v)
	}
	s.roster = kept
	return towed
}

// newPlate builds a short registration plate such as "LEA-4F21" from the
// opaque id generator.
func newPlate() string {
	id := strings.ToUpper(idgen.New())
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 4 {
		id = id[:4]
	}
	return fmt.Sprintf("%s-%s", plateRegions[rand.Intn(len(plateRegions))], id)
}

var plateRegions = []string{"LEA", "ISB", "KHI", "PES"}

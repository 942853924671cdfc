package traffic

import (
	"github.com/kainat5008/Traffic-System-OS/internal/clock"
)

// LightState of one directional signal.
type LightState int

const (
	Red LightState = iota
	Yellow
	Green
)

func (s LightState) String() string {
	switch s {
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	}
	return "red"
}

// LightController cycles the four directional signals. One direction is
// green at a time; the previous green passes through yellow before the next
// turns green. The controller holds no lock; its owner serializes Advance
// calls and takes the LaneAccess grant before admitting vehicles on green.
type LightController struct {
	states map[string]LightState
	order  []string
	active int
	phase  LightState
}

// NewLightController starts with the first direction green.
func NewLightController() *LightController {
	c := &LightController{
		states: make(map[string]LightState, len(Directions)),
		order:  append([]string(nil), Directions...),
		phase:  Green,
	}
	for _, d := range c.order {
		c.states[d] = Red
	}
	c.states[c.order[0]] = Green
	return c
}

// StateOf returns the signal state for the direction.
func (c *LightController) StateOf(direction string) LightState {
	return c.states[direction]
}

// GreenDirection returns the direction currently allowed to move, or ""
// while the junction is in its yellow interval.
func (c *LightController) GreenDirection() string {
	if c.phase != Green {
		return ""
	}
	return c.order[c.active]
}

// GreenMinutes returns how long the current green phase should run on the
// simulated clock. Greens stretch during peak hours to move the longer
// queues through.
func (c *LightController) GreenMinutes(sim *clock.SimClock) int {
	if sim != nil && sim.IsPeak() {
		return 5
	}
	return 2
}

// Advance steps the cycle: green goes yellow, yellow goes red and hands
// green to the next direction.
func (c *LightController) Advance() {
	current := c.order[c.active]
	switch c.phase {
	case Green:
		c.states[current] = Yellow
		c.phase = Yellow
	case Yellow:
		c.states[current] = Red
		c.active = (c.active + 1) % len(c.order)
		c.states[c.order[c.active]] = Green
		c.phase = Green
	}
}

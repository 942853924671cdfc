package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimClockAdvance(t *testing.T) {
	c := NewSimClock(23, 50)
	c.Advance(15)
	hour, minute := c.HourMinute()
	assert.Equal(t, 0, hour)
	assert.Equal(t, 5, minute)
}

func TestSimClockPeakWindows(t *testing.T) {
	cases := []struct {
		hour int
		peak bool
	}{
		{6, false},
		{7, true},
		{9, true},
		{10, false},
		{16, true},
		{19, true},
		{20, false},
	}
	for _, tc := range cases {
		c := NewSimClock(tc.hour, 0)
		assert.Equal(t, tc.peak, c.IsPeak(), "hour %d", tc.hour)
	}
}

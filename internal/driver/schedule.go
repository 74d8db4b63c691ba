package driver

import (
	"fmt"
	"math"
	"time"
)

// ResetPeriods is the episode length in seconds of simulated time.
const ResetPeriods = 3

// Schedule decides after which iteration the environment is reset.
type Schedule interface {
	Due(step int) bool
}

// StepSchedule resets whenever step is a multiple of ResetPeriods*Frequency,
// including step 0. Fractional frequencies use float modulo, so a period
// that is not a whole number of steps only fires at step 0 and at exact
// multiples.
type StepSchedule struct {
	Frequency float64
}

func (s StepSchedule) Due(step int) bool {
	return math.Mod(float64(step), ResetPeriods*s.Frequency) == 0
}

func (s StepSchedule) String() string {
	return fmt.Sprintf("every %v steps", ResetPeriods*s.Frequency)
}

// ClockSchedule resets once Interval of wall time has passed since the
// previous reset.
type ClockSchedule struct {
	Interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewClockSchedule starts the interval at construction. A nil clock uses
// time.Now.
func NewClockSchedule(interval time.Duration, clock func() time.Time) *ClockSchedule {
	if clock == nil {
		clock = time.Now
	}
	return &ClockSchedule{Interval: interval, now: clock, last: clock()}
}

func (c *ClockSchedule) Due(int) bool {
	now := c.now()
	if now.Sub(c.last) < c.Interval {
		return false
	}
	c.last = now
	return true
}

func (c *ClockSchedule) String() string {
	return fmt.Sprintf("every %s", c.Interval)
}

package hdl

import (
	"fmt"
	"log"

	"github.com/sarchlab/dpramtb/sim/timing"
)

// Clock toggles a 1-bit signal with a 50% duty cycle.
type Clock struct {
	*timing.TickingComponent

	signal  *Signal
	period  timing.VTime
	running bool
	high    bool
}

// NewClock creates a clock that drives the signal with the given period. The
// clock does not toggle until it is started.
func NewClock(
	name string,
	engine timing.Engine,
	signal *Signal,
	period timing.VTime,
) (*Clock, error) {
	if signal.Len() != 1 {
		return nil, fmt.Errorf("%w: clock %s on %s",
			ErrEdgeNeedsOneBit, name, signal.Name())
	}

	if period < 2 || period%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, uint64(period))
	}

	c := &Clock{
		signal: signal,
		period: period,
	}
	c.TickingComponent = timing.NewTickingComponent(
		name, engine, timing.FreqFromPeriod(period/2), c)

	return c, nil
}

// Start begins toggling. The first edge is a rising edge at the first half
// period boundary at or after the current time.
func (c *Clock) Start() {
	if c.running {
		return
	}

	c.running = true
	c.high = c.signal.Bool()
	c.TickNow()
}

// Stop stops toggling. The signal keeps its last value.
func (c *Clock) Stop() {
	c.running = false
}

// Running reports whether the clock is toggling.
func (c *Clock) Running() bool {
	return c.running
}

// Period returns the time of a full clock cycle.
func (c *Clock) Period() timing.VTime {
	return c.period
}

// Freq returns the frequency of the clock.
func (c *Clock) Freq() timing.Freq {
	return timing.FreqFromPeriod(c.period)
}

// Signal returns the signal driven by the clock.
func (c *Clock) Signal() *Signal {
	return c.signal
}

// Tick toggles the signal.
func (c *Clock) Tick() bool {
	if !c.running {
		return false
	}

	c.high = !c.high

	var v uint64
	if c.high {
		v = 1
	}

	if err := c.signal.Drive(v); err != nil {
		log.Panic(err)
	}

	return true
}

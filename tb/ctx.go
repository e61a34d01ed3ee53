package tb

import (
	"fmt"

	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// Ctx is handed to the function of a task. It must only be used by that
// task.
type Ctx struct {
	env  *Env
	task *Task
}

// Now returns the current simulated time.
func (c *Ctx) Now() timing.VTime {
	return c.env.engine.CurrentTime()
}

// DUT returns the design under test.
func (c *Ctx) DUT() hdl.Design {
	return c.env.dut
}

// Task returns the task the context belongs to.
func (c *Ctx) Task() *Task {
	return c.task
}

// Signal looks up a signal of the design under test.
func (c *Ctx) Signal(name string) (*hdl.Signal, error) {
	return c.env.dut.Signal(name)
}

// Logf writes a log line prefixed with the time and the name of the test.
func (c *Ctx) Logf(format string, args ...any) {
	c.env.logf(format, args...)
}

// Wait suspends the task until the trigger fires.
func (c *Ctx) Wait(trigger Trigger) error {
	cancel, err := trigger.prime(c.task)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", trigger, err)
	}

	c.task.cancelWait = cancel
	c.task.suspend()

	return nil
}

// RisingEdge waits for the signal to go from 0 to 1.
func (c *Ctx) RisingEdge(s *hdl.Signal) error {
	return c.Wait(RisingEdge(s))
}

// FallingEdge waits for the signal to go from 1 to 0.
func (c *Ctx) FallingEdge(s *hdl.Signal) error {
	return c.Wait(FallingEdge(s))
}

// Edge waits for any change of the signal.
func (c *Ctx) Edge(s *hdl.Signal) error {
	return c.Wait(Edge(s))
}

// ReadOnly waits until the values of the current time step have settled.
func (c *Ctx) ReadOnly() error {
	return c.Wait(ReadOnly())
}

// Timer waits for the given amount of simulated time.
func (c *Ctx) Timer(d timing.VTime) error {
	return c.Wait(Timer(d))
}

// ClockCycles waits for n rising edges of the signal.
func (c *Ctx) ClockCycles(s *hdl.Signal, n int) error {
	return c.Wait(ClockCycles(s, n))
}

// Join waits until the task is done and returns its error.
func (c *Ctx) Join(t *Task) error {
	if err := c.Wait(Join(t)); err != nil {
		return err
	}

	return t.err
}

// Fork starts a task at the current time. The new task runs once the
// current task waits.
func (c *Ctx) Fork(name string, fn TestFunc) *Task {
	return c.env.Fork(name, fn)
}

// StartClock starts a clock generator on the signal. The clock stops when
// the test ends.
func (c *Ctx) StartClock(s *hdl.Signal, period timing.VTime) (*hdl.Clock, error) {
	return c.env.startClock(s, period)
}

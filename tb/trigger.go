package tb

import (
	"fmt"

	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// A Trigger is a condition a task can wait for.
type Trigger interface {
	fmt.Stringer

	// prime arranges for the task to be woken when the condition is met. The
	// returned function withdraws the arrangement.
	prime(t *Task) (cancel func(), err error)
}

type edgeTrigger struct {
	signal *hdl.Signal
	edge   hdl.Edge
}

// RisingEdge fires when the 1-bit signal goes from 0 to 1.
func RisingEdge(s *hdl.Signal) Trigger {
	return edgeTrigger{signal: s, edge: hdl.EdgeRising}
}

// FallingEdge fires when the 1-bit signal goes from 1 to 0.
func FallingEdge(s *hdl.Signal) Trigger {
	return edgeTrigger{signal: s, edge: hdl.EdgeFalling}
}

// Edge fires on any change of the signal.
func Edge(s *hdl.Signal) Trigger {
	return edgeTrigger{signal: s, edge: hdl.EdgeAny}
}

func (tr edgeTrigger) String() string {
	return fmt.Sprintf("%s(%s)", tr.edge, tr.signal.Name())
}

func (tr edgeTrigger) prime(t *Task) (func(), error) {
	return countEdges(t, tr.signal, tr.edge, 1)
}

func countEdges(
	t *Task,
	s *hdl.Signal,
	edge hdl.Edge,
	n int,
) (func(), error) {
	var sub *hdl.Subscription

	sub, err := s.Subscribe(edge, hdl.ListenerFunc(
		func(*hdl.Signal, hdl.Edge) {
			n--
			if n > 0 {
				return
			}

			s.Unsubscribe(sub)
			t.wakeNow()
		}))
	if err != nil {
		return nil, err
	}

	return func() { s.Unsubscribe(sub) }, nil
}

type clockCyclesTrigger struct {
	signal *hdl.Signal
	n      int
}

// ClockCycles fires after n rising edges of the signal.
func ClockCycles(s *hdl.Signal, n int) Trigger {
	return clockCyclesTrigger{signal: s, n: n}
}

func (tr clockCyclesTrigger) String() string {
	return fmt.Sprintf("ClockCycles(%s, %d)", tr.signal.Name(), tr.n)
}

func (tr clockCyclesTrigger) prime(t *Task) (func(), error) {
	if tr.n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCycles, tr.n)
	}

	return countEdges(t, tr.signal, hdl.EdgeRising, tr.n)
}

type timerTrigger struct {
	d timing.VTime
}

// Timer fires after the given amount of simulated time.
func Timer(d timing.VTime) Trigger {
	return timerTrigger{d: d}
}

func (tr timerTrigger) String() string {
	return fmt.Sprintf("Timer(%s)", tr.d)
}

func (tr timerTrigger) prime(t *Task) (func(), error) {
	if tr.d == 0 {
		return nil, ErrZeroTimer
	}

	t.wakeAt(t.env.engine.CurrentTime()+tr.d, timing.RegionActive)

	return nil, nil
}

type readOnlyTrigger struct{}

// ReadOnly fires once all the values of the current time step have settled.
func ReadOnly() Trigger {
	return readOnlyTrigger{}
}

func (readOnlyTrigger) String() string {
	return "ReadOnly()"
}

func (readOnlyTrigger) prime(t *Task) (func(), error) {
	engine := t.env.engine
	if engine.CurrentRegion() == timing.RegionReadOnly {
		return nil, ErrAlreadyReadOnly
	}

	t.wakeAt(engine.CurrentTime(), timing.RegionReadOnly)

	return nil, nil
}

type joinTrigger struct {
	task *Task
}

// Join fires when the task is done.
func Join(task *Task) Trigger {
	return joinTrigger{task: task}
}

func (tr joinTrigger) String() string {
	return fmt.Sprintf("Join(%s)", tr.task.name)
}

func (tr joinTrigger) prime(t *Task) (func(), error) {
	if tr.task.done {
		t.wakeNow()
		return nil, nil
	}

	tr.task.joiners = append(tr.task.joiners, t.wakeNow)

	return nil, nil
}

package tb

import (
	"fmt"
	"log"

	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/naming"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// resumeEvent continues a waiting task.
type resumeEvent struct {
	timing.EventBase
	task *Task
}

// Env is the runtime of one test. It owns the tasks and the clocks started
// by the testbench.
type Env struct {
	engine   timing.Engine
	dut      hdl.Design
	logger   *log.Logger
	testName string

	tasks   []*Task
	current *Task
	main    *Task
	clocks  []*hdl.Clock
	err     error
}

// NewEnv creates an environment for the test with the given name.
func NewEnv(
	engine timing.Engine,
	dut hdl.Design,
	logger *log.Logger,
	testName string,
) *Env {
	if logger == nil {
		logger = log.Default()
	}

	return &Env{
		engine:   engine,
		dut:      dut,
		logger:   logger,
		testName: testName,
	}
}

// Engine returns the engine of the simulation.
func (e *Env) Engine() timing.Engine {
	return e.engine
}

// Fork creates a task that starts at the current time.
func (e *Env) Fork(name string, fn TestFunc) *Task {
	t := &Task{
		name:    name,
		env:     e,
		fn:      fn,
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}

	e.tasks = append(e.tasks, t)
	t.wakeNow()

	return t
}

// Start forks the main task of the test. The engine stops when the main
// task returns.
func (e *Env) Start(fn TestFunc) *Task {
	e.main = e.Fork(e.testName, fn)
	return e.main
}

// Main returns the main task.
func (e *Env) Main() *Task {
	return e.main
}

// Err returns the first error returned by a task other than the main one.
func (e *Env) Err() error {
	return e.err
}

// Tasks returns all the tasks forked so far.
func (e *Env) Tasks() []*Task {
	return e.tasks
}

// Handle resumes a task.
func (e *Env) Handle(evt timing.Event) error {
	re, ok := evt.(resumeEvent)
	if !ok {
		return fmt.Errorf("tb: cannot handle %T", evt)
	}

	t := re.task
	if t.done {
		return nil
	}

	t.cancelWait = nil
	e.current = t
	t.switchTo()
	e.current = nil

	if t.done {
		e.taskFinished(t)
	}

	return nil
}

func (e *Env) taskFinished(t *Task) {
	joiners := t.joiners
	t.joiners = nil

	for _, wake := range joiners {
		wake()
	}

	if t.killed {
		return
	}

	if t == e.main {
		e.engine.Stop()
		return
	}

	if t.err != nil && e.err == nil {
		e.err = fmt.Errorf("task %s: %w", t.name, t.err)
		e.engine.Stop()
	}
}

// Shutdown stops the clocks and kills all the tasks that are still waiting.
func (e *Env) Shutdown() {
	for _, c := range e.clocks {
		c.Stop()
	}

	for _, t := range e.tasks {
		t.Kill()
	}
}

func (e *Env) startClock(sig *hdl.Signal, period timing.VTime) (*hdl.Clock, error) {
	name := naming.BuildNameWithIndex(
		"Tb", "Clock"+naming.LastToken(sig.Name()), len(e.clocks))

	c, err := hdl.NewClock(name, e.engine, sig, period)
	if err != nil {
		return nil, err
	}

	e.clocks = append(e.clocks, c)
	c.Start()

	return c, nil
}

func (e *Env) logf(format string, args ...any) {
	e.logger.Printf("%12s %s: %s",
		e.engine.CurrentTime(), e.testName, fmt.Sprintf(format, args...))
}

func (t *Task) wakeAt(time timing.VTime, region timing.Region) {
	t.env.engine.Schedule(resumeEvent{
		EventBase: timing.MakeEventBase(time, region, t.env),
		task:      t,
	})
}

// wakeNow resumes the task in the current time step. A task woken by a
// non-blocking update resumes in a new delta cycle.
func (t *Task) wakeNow() {
	region := t.env.engine.CurrentRegion()
	if region == timing.RegionNBA {
		region = timing.RegionActive
	}

	t.wakeAt(t.env.engine.CurrentTime(), region)
}

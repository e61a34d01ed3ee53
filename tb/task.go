package tb

import (
	"github.com/pkg/errors"
)

// TestFunc is the body of a test or of a forked task.
type TestFunc func(ctx *Ctx) error

// errKilled unwinds the goroutine of a killed task.
type errKilled struct{}

// A Task is a coroutine of the testbench.
type Task struct {
	name string
	env  *Env
	fn   TestFunc

	resume  chan struct{}
	yielded chan struct{}

	started bool
	done    bool
	killed  bool
	err     error

	cancelWait func()
	joiners    []func()
}

// Name returns the name of the task.
func (t *Task) Name() string {
	return t.name
}

// Done reports whether the task has returned or has been killed.
func (t *Task) Done() bool {
	return t.done
}

// Killed reports whether the task has been killed.
func (t *Task) Killed() bool {
	return t.killed
}

// Err returns the error the task returned.
func (t *Task) Err() error {
	return t.err
}

// Kill stops the task. Killing a finished task has no effect. A task cannot
// kill itself.
func (t *Task) Kill() {
	if t.done {
		return
	}

	if t.env.current == t {
		panic("task " + t.name + " cannot kill itself")
	}

	t.killed = true

	if t.cancelWait != nil {
		t.cancelWait()
		t.cancelWait = nil
	}

	if !t.started {
		t.done = true
		t.env.taskFinished(t)

		return
	}

	close(t.resume)
	<-t.yielded

	t.env.taskFinished(t)
}

func (t *Task) run() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errKilled); !ok {
				t.err = errors.Errorf("task %s panicked: %v", t.name, r)
			}
		}

		t.done = true
		t.yielded <- struct{}{}
	}()

	t.err = t.fn(&Ctx{env: t.env, task: t})
}

// suspend gives control back to the environment until the task is resumed.
func (t *Task) suspend() {
	t.yielded <- struct{}{}

	if _, ok := <-t.resume; !ok {
		panic(errKilled{})
	}
}

// switchTo runs the task until it waits or returns.
func (t *Task) switchTo() {
	if !t.started {
		t.started = true

		go t.run()
	} else {
		t.resume <- struct{}{}
	}

	<-t.yielded
}

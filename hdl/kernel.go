package hdl

import (
	"fmt"

	"github.com/sarchlab/dpramtb/sim/naming"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// commitEvent applies the deposits of a time step.
type commitEvent struct {
	timing.EventBase
}

type deposit struct {
	signal *Signal
	value  uint64
}

// Kernel owns the signals of a simulation and commits the values deposited
// by the testbench.
type Kernel struct {
	naming.NamedBase

	engine  timing.Engine
	signals []*Signal
	byName  map[string]*Signal

	pending         []deposit
	commitScheduled bool
}

// NewKernel creates a kernel that schedules its commits on the engine.
func NewKernel(engine timing.Engine) *Kernel {
	return &Kernel{
		NamedBase: naming.MakeNamedBase("Kernel"),
		engine:    engine,
		byName:    make(map[string]*Signal),
	}
}

// Engine returns the engine the kernel runs on.
func (k *Kernel) Engine() timing.Engine {
	return k.engine
}

// NewSignal creates a signal of the given width, initialized to 0.
func (k *Kernel) NewSignal(name string, width int) (*Signal, error) {
	naming.NameMustBeValid(name)

	if width < 1 || width > 64 {
		return nil, fmt.Errorf("%w: %s has %d bits", ErrInvalidWidth, name, width)
	}

	if _, found := k.byName[name]; found {
		panic("signal " + name + " already exists")
	}

	s := &Signal{
		name:   name,
		width:  width,
		kernel: k,
	}

	k.signals = append(k.signals, s)
	k.byName[name] = s

	return s, nil
}

// Signals returns all the signals in creation order.
func (k *Kernel) Signals() []*Signal {
	return k.signals
}

// SignalByName returns the signal with the full hierarchical name.
func (k *Kernel) SignalByName(name string) (*Signal, error) {
	s, found := k.byName[name]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSignalNotFound, name)
	}

	return s, nil
}

func (k *Kernel) inReadOnly() bool {
	return k.engine.CurrentRegion() == timing.RegionReadOnly
}

func (k *Kernel) deposit(s *Signal, v uint64) {
	k.pending = append(k.pending, deposit{signal: s, value: v})

	if k.commitScheduled {
		return
	}

	k.commitScheduled = true
	k.engine.Schedule(commitEvent{
		EventBase: timing.MakeEventBase(
			k.engine.CurrentTime(), timing.RegionNBA, k),
	})
}

// Handle commits the pending deposits.
func (k *Kernel) Handle(e timing.Event) error {
	if _, ok := e.(commitEvent); !ok {
		return fmt.Errorf("kernel cannot handle %T", e)
	}

	pending := k.pending
	k.pending = nil
	k.commitScheduled = false

	for _, d := range pending {
		d.signal.update(d.value)
	}

	return nil
}

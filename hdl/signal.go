package hdl

import (
	"fmt"

	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// Edge selects which value changes a listener is interested in.
type Edge int

// The kinds of edges.
const (
	EdgeAny Edge = iota
	EdgeRising
	EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeAny:
		return "Edge"
	case EdgeRising:
		return "RisingEdge"
	case EdgeFalling:
		return "FallingEdge"
	}

	return "UnknownEdge"
}

// A Listener is notified when a signal changes.
type Listener interface {
	NotifyEdge(s *Signal, edge Edge)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(s *Signal, edge Edge)

// NotifyEdge calls f.
func (f ListenerFunc) NotifyEdge(s *Signal, edge Edge) {
	f(s, edge)
}

// HookPosValueChange is triggered every time the value of a signal changes.
// The item is a ValueChange.
var HookPosValueChange = &hooking.HookPos{Name: "ValueChange"}

// ValueChange describes a change of value of a signal.
type ValueChange struct {
	Signal *Signal
	Old    uint64
	New    uint64
	Time   timing.VTime
}

// A Subscription identifies a listener registered on a signal.
type Subscription struct {
	edge      Edge
	listener  Listener
	cancelled bool
}

// Signal is a named, fixed-width value on the boundary of a design.
type Signal struct {
	hooking.HookableBase

	name   string
	width  int
	value  uint64
	kernel *Kernel
	subs   []*Subscription
}

// Name returns the hierarchical name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Len returns the width of the signal in bits.
func (s *Signal) Len() int {
	return s.width
}

// Value returns the current value of the signal.
func (s *Signal) Value() BinaryValue {
	return BinaryValue{Bits: s.value, Width: s.width}
}

// Uint returns the current value of the signal as an integer.
func (s *Signal) Uint() uint64 {
	return s.value
}

// Bool returns true if any bit of the signal is set.
func (s *Signal) Bool() bool {
	return s.value != 0
}

// Set deposits a value on the signal. The value becomes visible in the NBA
// region of the current time step. Later deposits in the same time step
// overwrite earlier ones.
func (s *Signal) Set(v uint64) error {
	if err := s.checkWrite(v); err != nil {
		return err
	}

	s.kernel.deposit(s, v)

	return nil
}

// Drive changes the value of the signal immediately and notifies the
// listeners.
func (s *Signal) Drive(v uint64) error {
	if err := s.checkWrite(v); err != nil {
		return err
	}

	s.update(v)

	return nil
}

func (s *Signal) checkWrite(v uint64) error {
	if !Fits(v, s.width) {
		return fmt.Errorf("%w: %d on %s (%d bits)",
			ErrValueOutOfRange, v, s.name, s.width)
	}

	if s.kernel.inReadOnly() {
		return fmt.Errorf("%w: %s", ErrWriteInReadOnly, s.name)
	}

	return nil
}

// Subscribe registers a listener for the given edge. Rising and falling edges
// are only available on 1-bit signals.
func (s *Signal) Subscribe(edge Edge, l Listener) (*Subscription, error) {
	if edge != EdgeAny && s.width != 1 {
		return nil, fmt.Errorf("%w: %s on %s", ErrEdgeNeedsOneBit, edge, s.name)
	}

	sub := &Subscription{edge: edge, listener: l}
	s.subs = append(s.subs, sub)

	return sub, nil
}

// Unsubscribe removes a listener. Unsubscribing during a notification stops
// the listener from being called for the rest of that notification.
func (s *Signal) Unsubscribe(sub *Subscription) {
	sub.cancelled = true

	kept := s.subs[:0]
	for _, existing := range s.subs {
		if existing != sub {
			kept = append(kept, existing)
		}
	}

	for i := len(kept); i < len(s.subs); i++ {
		s.subs[i] = nil
	}

	s.subs = kept
}

// NumSubscribers returns the number of active listeners.
func (s *Signal) NumSubscribers() int {
	return len(s.subs)
}

func (s *Signal) update(v uint64) {
	old := s.value
	if old == v {
		return
	}

	s.value = v

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosValueChange,
		Item: ValueChange{
			Signal: s,
			Old:    old,
			New:    v,
			Time:   s.kernel.engine.CurrentTime(),
		},
	})

	edge := EdgeAny
	if s.width == 1 {
		edge = EdgeFalling
		if v == 1 {
			edge = EdgeRising
		}
	}

	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)

	for _, sub := range subs {
		if sub.cancelled {
			continue
		}

		if sub.edge == EdgeAny || sub.edge == edge {
			sub.listener.NotifyEdge(s, edge)
		}
	}
}

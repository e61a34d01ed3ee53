package hdl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/dpramtb/sim/naming"
)

// A Design exposes the signals of a device under test by name.
type Design interface {
	naming.Named
	Signal(name string) (*Signal, error)
	MustSignal(name string) *Signal
	Signals() []*Signal
}

// Scope groups the signals of one level of a design hierarchy.
type Scope struct {
	naming.NamedBase

	signals map[string]*Signal
	order   []*Signal
}

// NewScope creates an empty scope.
func NewScope(name string) *Scope {
	naming.NameMustBeValid(name)

	return &Scope{
		NamedBase: naming.MakeNamedBase(name),
		signals:   make(map[string]*Signal),
	}
}

// Add makes the signal reachable by the last token of its name.
func (s *Scope) Add(sig *Signal) {
	local := naming.LastToken(sig.Name())
	if _, found := s.signals[local]; found {
		panic("signal " + local + " already added to " + s.Name())
	}

	s.signals[local] = sig
	s.order = append(s.order, sig)
}

// Signal looks up a signal by its local or its full name.
func (s *Scope) Signal(name string) (*Signal, error) {
	if sig, found := s.signals[name]; found {
		return sig, nil
	}

	for _, sig := range s.order {
		if sig.Name() == name {
			return sig, nil
		}
	}

	return nil, fmt.Errorf("%w: %s in %s, available: %s",
		ErrSignalNotFound, name, s.Name(), strings.Join(s.SignalNames(), ", "))
}

// MustSignal is Signal that panics when the signal does not exist.
func (s *Scope) MustSignal(name string) *Signal {
	sig, err := s.Signal(name)
	if err != nil {
		panic(err)
	}

	return sig
}

// Signals returns the signals in the order they were added.
func (s *Scope) Signals() []*Signal {
	return s.order
}

// SignalNames returns the local names of the signals, sorted.
func (s *Scope) SignalNames() []string {
	names := make([]string, 0, len(s.signals))
	for n := range s.signals {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

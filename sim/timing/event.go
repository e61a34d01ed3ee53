package timing

import (
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/id"
)

// Region orders the events that happen at the same time. All the events of a
// region are handled before any event of a later region.
type Region int

// The regions of a time step, in the order they are processed.
const (
	// RegionActive is where clocks toggle, models sample their inputs and
	// testbench tasks resume.
	RegionActive Region = iota

	// RegionNBA is where non-blocking updates are committed: register
	// outputs of models and values deposited by the testbench.
	RegionNBA

	// RegionReadOnly is where all values of the time step have settled.
	// Nothing may change a signal from here.
	RegionReadOnly
)

func (r Region) String() string {
	switch r {
	case RegionActive:
		return "Active"
	case RegionNBA:
		return "NBA"
	case RegionReadOnly:
		return "ReadOnly"
	}

	return "Unknown"
}

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() VTime

	// Returns the handler that can should handle the event
	Handler() Handler

	// Region tells in which phase of the time step the event is handled.
	Region() Region
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID      string
	time    VTime
	handler Handler
	region  Region
}

// NewEventBase creates a new EventBase in the active region.
func NewEventBase(t VTime, handler Handler) *EventBase {
	e := MakeEventBase(t, RegionActive, handler)
	return &e
}

// MakeEventBase creates an EventBase that is handled in the given region.
func MakeEventBase(t VTime, region Region, handler Handler) EventBase {
	return EventBase{
		ID:      id.Generate(),
		time:    t,
		handler: handler,
		region:  region,
	}
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// Region returns the region of the time step that the event belongs to.
func (e EventBase) Region() Region {
	return e.region
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// Package timing provides the discrete-event engine that advances simulated
// time.
package timing

import (
	"errors"

	"github.com/sarchlab/dpramtb/sim/hooking"
)

var (
	// ErrReadOnlyRegion is raised when something tries to schedule an
	// updating event at the current time from the read-only region.
	ErrReadOnlyRegion = errors.New("timing: cannot schedule an update " +
		"from the read-only region")

	// ErrTimeLimit is returned by Run when the next event lies beyond the
	// time limit of the engine.
	ErrTimeLimit = errors.New("timing: simulation time limit reached")

	// ErrUnknownUnit is returned when parsing an unsupported time unit.
	ErrUnknownUnit = errors.New("timing: unknown time unit")
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTime)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// CurrentRegion returns the region of the event being handled.
	CurrentRegion() Region

	// Run will process all the events until the simulation finishes
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// Stop makes Run return once the current event is handled. Events that
	// are still queued stay in the queue.
	Stop()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}

package timing

import (
	"sync"

	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/naming"
)

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTime) TickEvent {
	return TickEvent{
		EventBase: MakeEventBase(time, RegionActive, handler),
	}
}

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	Tick() bool
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	lock    sync.Mutex
	handler Handler
	Freq    Freq
	Engine  Engine

	hasScheduled bool
	nextTickTime VTime
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Freq = freq

	return ticker
}

// TickNow schedule a Tick event at the current time.
func (t *TickScheduler) TickNow() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.ThisTick(t.CurrentTime())
	t.scheduleAt(time)
}

// TickLater will schedule a tick event at the cycle after the now time.
func (t *TickScheduler) TickLater() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.NextTick(t.CurrentTime())
	t.scheduleAt(time)
}

func (t *TickScheduler) scheduleAt(time VTime) {
	if t.hasScheduled && t.nextTickTime >= time {
		return
	}

	t.hasScheduled = true
	t.nextTickTime = time

	t.Engine.Schedule(MakeTickEvent(t.handler, time))
}

// CurrentTime returns the time of the engine.
func (t *TickScheduler) CurrentTime() VTime {
	return t.Engine.CurrentTime()
}

// TickingComponent is a type of component that update states from cycle to
// cycle. A programmer would only need to program a tick function for a ticking
// component.
type TickingComponent struct {
	naming.NamedBase
	hooking.HookableBase
	*TickScheduler

	ticker Ticker
}

// Handle triggers the tick function of the TickingComponent
func (c *TickingComponent) Handle(_ Event) error {
	madeProgress := c.ticker.Tick()
	if madeProgress {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a new ticking component
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	naming.NameMustBeValid(name)

	tc := new(TickingComponent)
	tc.NamedBase = naming.MakeNamedBase(name)
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)
	tc.ticker = ticker

	return tc
}

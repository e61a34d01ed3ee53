package timing

import (
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/sarchlab/dpramtb/sim/hooking"
)

// A SerialEngine is an Engine that always run events one after another.
type SerialEngine struct {
	hooking.HookableBase

	timeLock sync.RWMutex
	time     VTime
	region   Region
	running  bool

	queue     EventQueue
	timeLimit VTime

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	stopLock sync.Mutex
	stopped  bool

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.queue = NewEventQueue()

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// SetTimeLimit makes Run return ErrTimeLimit instead of handling events that
// are later than t. Zero disables the limit.
func (e *SerialEngine) SetTimeLimit(t VTime) {
	e.timeLock.Lock()
	e.timeLimit = t
	e.timeLock.Unlock()
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	e.timeLock.RLock()
	now, region, running := e.time, e.region, e.running
	e.timeLock.RUnlock()

	if evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current time, "+
				"evt %s @ %s, now %s",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if running &&
		evt.Time() == now &&
		region == RegionReadOnly &&
		evt.Region() != RegionReadOnly {
		log.Panicf("%s: evt %s", ErrReadOnlyRegion, reflect.TypeOf(evt))
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTime {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTime, r Region) {
	e.timeLock.Lock()
	e.time = t
	e.region = r
	e.timeLock.Unlock()
}

func (e *SerialEngine) setRunning(running bool) {
	e.timeLock.Lock()
	e.running = running
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. It returns when
// the queue is empty, when Stop is called, or when a handler returns an error.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	e.setRunning(true)
	defer e.setRunning(false)

	for {
		if e.consumeStop() {
			return nil
		}

		if e.queue.Len() == 0 {
			return nil
		}

		err := e.handleNextEvent()
		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) handleNextEvent() error {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if limit := e.readTimeLimit(); limit > 0 && e.queue.Peek().Time() > limit {
		return fmt.Errorf("%w: next event at %s, limit %s",
			ErrTimeLimit, e.queue.Peek().Time(), limit)
	}

	evt := e.queue.Pop()
	now := e.readNow()

	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %s, now %s",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	e.writeNow(evt.Time(), evt.Region())

	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	err := handler.Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	if err != nil {
		return fmt.Errorf("%s @ %s: %w", reflect.TypeOf(evt), evt.Time(), err)
	}

	return nil
}

func (e *SerialEngine) readTimeLimit() VTime {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.timeLimit
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Stop makes Run return after the event that is being handled.
func (e *SerialEngine) Stop() {
	e.stopLock.Lock()
	e.stopped = true
	e.stopLock.Unlock()
}

func (e *SerialEngine) consumeStop() bool {
	e.stopLock.Lock()
	defer e.stopLock.Unlock()

	stopped := e.stopped
	e.stopped = false

	return stopped
}

// Pending returns the number of events that are waiting to be handled.
func (e *SerialEngine) Pending() int {
	return e.queue.Len()
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTime {
	return e.readNow()
}

// CurrentRegion returns the region of the current event.
func (e *SerialEngine) CurrentRegion() Region {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.region
}

// RegisterSimulationEndHandler invokes all the registered simulation end
// handler.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}

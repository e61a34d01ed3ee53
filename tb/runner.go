package tb

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// HookPosTestStart is triggered before a test starts. The item is the Test.
var HookPosTestStart = &hooking.HookPos{Name: "TestStart"}

// HookPosTestEnd is triggered after a test ends. The item is the Result.
var HookPosTestEnd = &hooking.HookPos{Name: "TestEnd"}

// Simulation is what a test runs against.
type Simulation struct {
	Engine timing.Engine
	Kernel *hdl.Kernel
	DUT    hdl.Design
}

// A Factory builds a fresh simulation for each test.
type Factory func(testName string) (*Simulation, error)

type timeLimiter interface {
	SetTimeLimit(t timing.VTime)
}

// Runner runs tests, each in its own simulation.
type Runner struct {
	hooking.HookableBase

	factory   Factory
	logger    *log.Logger
	timeLimit timing.VTime
}

// RunnerBuilder creates runners.
type RunnerBuilder struct {
	factory   Factory
	logger    *log.Logger
	timeLimit timing.VTime
}

// MakeRunnerBuilder returns a RunnerBuilder that logs to the default logger.
func MakeRunnerBuilder() RunnerBuilder {
	return RunnerBuilder{
		logger: log.Default(),
	}
}

// WithFactory sets how simulations are built.
func (b RunnerBuilder) WithFactory(f Factory) RunnerBuilder {
	b.factory = f
	return b
}

// WithLogger sets the logger the tests write to.
func (b RunnerBuilder) WithLogger(l *log.Logger) RunnerBuilder {
	b.logger = l
	return b
}

// WithTimeLimit aborts tests that run beyond the given simulated time. A
// limit of 0 means no limit.
func (b RunnerBuilder) WithTimeLimit(t timing.VTime) RunnerBuilder {
	b.timeLimit = t
	return b
}

// Build creates the runner.
func (b RunnerBuilder) Build() *Runner {
	if b.factory == nil {
		panic("a simulation factory is required")
	}

	return &Runner{
		factory:   b.factory,
		logger:    b.logger,
		timeLimit: b.timeLimit,
	}
}

// RunAll runs the tests one after another.
func (r *Runner) RunAll(tests []Test) []Result {
	results := make([]Result, 0, len(tests))

	for _, t := range tests {
		results = append(results, r.Run(t))
	}

	return results
}

// Run runs a single test.
func (r *Runner) Run(test Test) Result {
	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosTestStart,
		Item:   test,
	})

	start := time.Now()
	res := r.run(test)
	res.WallTime = time.Since(start)

	if res.Err != nil {
		res.Message = res.Err.Error()
	}

	r.logger.Printf("%12s %s: %s %s",
		res.SimTime, test.Name, res.Outcome, res.Message)

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosTestEnd,
		Item:   res,
	})

	return res
}

func (r *Runner) run(test Test) Result {
	res := Result{Name: test.Name}

	sim, err := r.factory(test.Name)
	if err != nil {
		res.Outcome = OutcomeError
		res.Err = errors.Wrap(err, "building the simulation")

		return res
	}

	if limiter, ok := sim.Engine.(timeLimiter); ok && r.timeLimit > 0 {
		limiter.SetTimeLimit(r.timeLimit)
	}

	env := NewEnv(sim.Engine, sim.DUT, r.logger, test.Name)
	main := env.Start(test.Func)

	runErr := sim.Engine.Run()
	res.SimTime = sim.Engine.CurrentTime()
	mainDone := main.Done()

	env.Shutdown()
	sim.Engine.Finished()

	switch {
	case mainDone && main.Err() != nil:
		res.Err = main.Err()
	case runErr != nil:
		res.Err = errors.Wrap(runErr, "simulation aborted")
	case env.Err() != nil:
		res.Err = env.Err()
	case !mainDone:
		res.Err = ErrIncomplete
	}

	res.Outcome = classify(res.Err)

	return res
}

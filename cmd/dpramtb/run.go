package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/sarchlab/dpramtb/config"
	"github.com/sarchlab/dpramtb/datarecording"
	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/monitoring"
	"github.com/sarchlab/dpramtb/regression"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/sarchlab/dpramtb/tb"
	"github.com/sarchlab/dpramtb/tracing"
	"github.com/spf13/cobra"
)

var errTestsFailed = errors.New("some tests did not pass")

func newRunCmd(opts *options) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the regression tests.",
		Long: "`run` runs all the tests, or the ones named with --test, " +
			"each on a fresh simulation.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			results, err := runRegression(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !tb.AllPassed(results) {
				return errTestsFailed
			}

			return nil
		},
	}

	config.RegisterFlags(runCmd.Flags(), &opts.flagValues)

	return runCmd
}

func runRegression(cfg config.Config, out io.Writer) ([]tb.Result, error) {
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
		log.Printf("Using seed %d", cfg.Seed)
	}

	tests, err := regression.Select(
		regression.NewTests(cfg.Options()), cfg.Tests)
	if err != nil {
		return nil, err
	}

	var (
		setups []regression.Setup
		hooks  []hooking.Hook
	)

	if cfg.Record {
		recorder := datarecording.New(cfg.RecordPath)
		defer recorder.Close()

		setups = append(setups, recordAccesses(recorder))
		hooks = append(hooks, tracing.NewResultTracer(recorder))
	}

	if cfg.Monitor {
		monitor := monitoring.NewMonitor().
			WithPortNumber(cfg.MonitorPort).
			WithBrowser(cfg.OpenBrowser)
		monitor.StartServer()

		tracker := newProgressTracker(monitor)
		setups = append(setups, tracker.setup)
		hooks = append(hooks, tracker)
	}

	if cfg.TraceEvents {
		setups = append(setups, traceEvents(log.New(os.Stderr, "", 0)))
	}

	runner := tb.MakeRunnerBuilder().
		WithFactory(regression.NewFactory(cfg.Design(), setups...)).
		WithTimeLimit(timing.VTime(cfg.MaxTimePS)).
		Build()
	for _, h := range hooks {
		runner.AcceptHook(h)
	}

	results := runner.RunAll(tests)

	err = tb.WriteSummary(out, results)
	if err != nil {
		return nil, err
	}

	if cfg.ReportPath != "" {
		err = writeReport(cfg.ReportPath, cfg, results)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(out, "Report written to %s\n", cfg.ReportPath)
	}

	return results, nil
}

// recordAccesses traces the RAM accesses into the recorder, which is flushed
// when each simulation ends.
func recordAccesses(recorder datarecording.DataRecorder) regression.Setup {
	return func(testName string, sim *tb.Simulation, ram *dpram.Comp) error {
		ram.AcceptHook(tracing.NewAccessTracer(recorder, testName))
		sim.Engine.RegisterSimulationEndHandler(recorder)

		return nil
	}
}

func traceEvents(logger *log.Logger) regression.Setup {
	return func(_ string, sim *tb.Simulation, _ *dpram.Comp) error {
		sim.Engine.AcceptHook(timing.NewEventLogger(logger))
		return nil
	}
}

// progressTracker shows the simulation of the running test on the monitor and
// removes its progress bars when the test ends.
type progressTracker struct {
	sync.Mutex

	monitor  *monitoring.Monitor
	progress map[string]*monitoring.AccessProgress
}

func newProgressTracker(m *monitoring.Monitor) *progressTracker {
	return &progressTracker{
		monitor:  m,
		progress: make(map[string]*monitoring.AccessProgress),
	}
}

func (t *progressTracker) setup(
	testName string,
	sim *tb.Simulation,
	ram *dpram.Comp,
) error {
	t.monitor.RegisterEngine(sim.Engine)
	t.monitor.RegisterDesign(ram)

	p := monitoring.NewAccessProgress(t.monitor, testName, ram.Depth())
	ram.AcceptHook(p)

	t.Lock()
	t.progress[testName] = p
	t.Unlock()

	return nil
}

// Func completes the progress of a test that ended.
func (t *progressTracker) Func(ctx hooking.HookCtx) {
	if ctx.Pos != tb.HookPosTestEnd {
		return
	}

	res := ctx.Item.(tb.Result)

	t.Lock()
	p, ok := t.progress[res.Name]
	delete(t.progress, res.Name)
	t.Unlock()

	if ok {
		p.Complete()
	}
}

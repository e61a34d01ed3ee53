package tb

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sarchlab/dpramtb/sim/timing"
)

// WriteSummary prints a table of the results.
func WriteSummary(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TEST\tSTATUS\tSIM TIME (ns)\tREAL TIME (s)\tRATIO (ns/s)")

	var (
		pass, fail, errored int
		simTotal            float64
		wallTotal           time.Duration
	)

	for _, r := range results {
		simNS := r.SimTime.In(timing.NS)
		wallS := r.WallTime.Seconds()

		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.3f\t%.2f\n",
			r.Name, r.Outcome, simNS, wallS, ratio(simNS, wallS))

		switch r.Outcome {
		case OutcomePass:
			pass++
		case OutcomeFail:
			fail++
		default:
			errored++
		}

		simTotal += simNS
		wallTotal += r.WallTime
	}

	fmt.Fprintf(tw, "TESTS=%d PASS=%d FAIL=%d ERROR=%d\t\t%.2f\t%.3f\t%.2f\n",
		len(results), pass, fail, errored,
		simTotal, wallTotal.Seconds(), ratio(simTotal, wallTotal.Seconds()))

	return tw.Flush()
}

func ratio(sim, wall float64) float64 {
	if wall == 0 {
		return 0
	}

	return sim / wall
}

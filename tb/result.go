package tb

import (
	"fmt"
	"time"

	"github.com/sarchlab/dpramtb/sim/timing"
)

// Outcome is the verdict of a test.
type Outcome int

// The possible outcomes.
const (
	OutcomePass Outcome = iota
	OutcomeFail
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "PASS"
	case OutcomeFail:
		return "FAIL"
	case OutcomeError:
		return "ERROR"
	}

	return "UNKNOWN"
}

// MarshalText writes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PASS":
		*o = OutcomePass
	case "FAIL":
		*o = OutcomeFail
	case "ERROR":
		*o = OutcomeError
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}

	return nil
}

// A Test is a named test function.
type Test struct {
	Name string
	Doc  string
	Func TestFunc
}

// Result is the result of running one test.
type Result struct {
	Name     string        `json:"name"`
	Outcome  Outcome       `json:"outcome"`
	SimTime  timing.VTime  `json:"sim_time_ps"`
	WallTime time.Duration `json:"wall_time_ns"`
	Message  string        `json:"message,omitempty"`
	Err      error         `json:"-"`
}

// Passed reports whether the test passed.
func (r Result) Passed() bool {
	return r.Outcome == OutcomePass
}

// AllPassed reports whether every result is a pass.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed() {
			return false
		}
	}

	return true
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomePass
	case IsFailure(err):
		return OutcomeFail
	default:
		return OutcomeError
	}
}

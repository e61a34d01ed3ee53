package tb

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyReadOnly is returned when waiting for the read-only region
	// from inside it.
	ErrAlreadyReadOnly = errors.New("tb: already in the read-only region")

	// ErrZeroTimer is returned when waiting for a timer without duration.
	ErrZeroTimer = errors.New("tb: timers must be longer than 0")

	// ErrInvalidCycles is returned when waiting for less than one clock
	// cycle.
	ErrInvalidCycles = errors.New("tb: the number of cycles must be positive")

	// ErrIncomplete is reported when the simulation runs out of events
	// before the test returns.
	ErrIncomplete = errors.New(
		"tb: simulation ended before the test completed")
)

// A Failure is an error that means the design did not behave as expected,
// as opposed to a problem of the testbench or the simulation.
type Failure struct {
	Msg string
}

// Failf creates a Failure.
func Failf(format string, args ...any) *Failure {
	return &Failure{Msg: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	return f.Msg
}

// IsFailure marks the error as a test failure.
func (f *Failure) IsFailure() bool {
	return true
}

// IsFailure reports whether err, or any error it wraps, marks a failing
// design rather than a broken test.
func IsFailure(err error) bool {
	var f interface{ IsFailure() bool }
	if errors.As(err, &f) {
		return f.IsFailure()
	}

	return false
}

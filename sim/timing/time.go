package timing

import (
	"fmt"
	"math"
)

// VTime is a point in simulated time, counted in picoseconds.
type VTime uint64

// Units of simulated time.
const (
	PS VTime = 1
	NS VTime = 1000 * PS
	US VTime = 1000 * NS
	MS VTime = 1000 * US
	S  VTime = 1000 * MS
)

// InSec converts the time to seconds.
func (t VTime) InSec() float64 {
	return float64(t) / float64(S)
}

// In returns the time expressed in the given unit.
func (t VTime) In(unit VTime) float64 {
	return float64(t) / float64(unit)
}

// String formats the time in nanoseconds.
func (t VTime) String() string {
	return fmt.Sprintf("%.3fns", t.In(NS))
}

// ParseUnit returns the time unit named by s. Accepted names are ps, ns, us,
// ms and s.
func ParseUnit(s string) (VTime, error) {
	switch s {
	case "ps":
		return PS, nil
	case "ns":
		return NS, nil
	case "us":
		return US, nil
	case "ms":
		return MS, nil
	case "s":
		return S, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// FromSec converts seconds into simulated time, rounding to the nearest
// picosecond.
func FromSec(sec float64) VTime {
	if sec < 0 || math.IsNaN(sec) {
		panic("invalid time")
	}

	return VTime(math.Round(sec * float64(S)))
}

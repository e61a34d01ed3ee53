package timing

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// FreqFromPeriod returns the frequency whose period is p.
func FreqFromPeriod(p VTime) Freq {
	if p == 0 {
		log.Panic("period cannot be 0")
	}

	return Freq(float64(S) / float64(p))
}

// Period returns the time between two consecutive ticks, rounded to the
// picosecond.
func (f Freq) Period() VTime {
	if f <= 0 || math.IsNaN(float64(f)) {
		log.Panic("frequency must be positive")
	}

	p := VTime(math.Round(float64(S) / float64(f)))
	if p == 0 {
		log.Panic("frequency is too high for picosecond resolution")
	}

	return p
}

// Cycle converts a time to the number of cycles passed since time 0.
func (f Freq) Cycle(time VTime) uint64 {
	return uint64(time / f.Period())
}

// ThisTick returns the current tick time
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) ThisTick(now VTime) VTime {
	p := f.Period()

	return (now + p - 1) / p * p
}

// NextTick returns the next tick time.
//
//	           Input
//	           [          )
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (f Freq) NextTick(now VTime) VTime {
	p := f.Period()

	return (now/p + 1) * p
}

// NCyclesLater returns the time after N cycles
//
// This function will always return a time of an integer number of cycles
func (f Freq) NCyclesLater(n int, now VTime) VTime {
	if n < 0 {
		log.Panic("cannot go back in time")
	}

	return f.ThisTick(now) + VTime(n)*f.Period()
}

// HalfTick returns the time in middle of two ticks
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                           |
//	                           Output
func (f Freq) HalfTick(t VTime) VTime {
	return f.ThisTick(t) + f.Period()/2
}

package regression

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/sarchlab/dpramtb/tb"
)

// The clock periods of the two ports.
const (
	ClkPeriodA = 2 * timing.NS
	ClkPeriodB = 4 * timing.NS
)

// DefaultReadLatency is the number of CLKB rising edges between presenting a
// read address and comparing DOB.
const DefaultReadLatency = 2

// DefaultMaxValue is the largest random value written.
const DefaultMaxValue = 1024

// Options parametrize the simple test. Zero values select the defaults.
type Options struct {
	// ReadLatency is the number of CLKB rising edges waited before comparing
	// DOB.
	ReadLatency int

	// MaxValue bounds the random data, inclusive. It is clamped to the width
	// of DIA.
	MaxValue uint64

	// Seed seeds the random data. A zero seed is replaced by one derived from
	// the wall clock, and logged.
	Seed uint64

	// Distinct draws a different value for each address when the value range
	// is large enough.
	Distinct bool

	// LastAddressExclusive leaves the last address out of both phases.
	LastAddressExclusive bool

	// ClkPeriodA is the period of the write clock, 2ns when zero.
	ClkPeriodA timing.VTime

	// ClkPeriodB is the period of the read clock, 4ns when zero.
	ClkPeriodB timing.VTime
}

func (o Options) withDefaults() Options {
	if o.ReadLatency == 0 {
		o.ReadLatency = DefaultReadLatency
	}

	if o.MaxValue == 0 {
		o.MaxValue = DefaultMaxValue
	}

	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}

	if o.ClkPeriodA == 0 {
		o.ClkPeriodA = ClkPeriodA
	}

	if o.ClkPeriodB == 0 {
		o.ClkPeriodB = ClkPeriodB
	}

	return o
}

// SimpleTest writes random values to all the addresses and reads them back.
func SimpleTest(ctx *tb.Ctx) error {
	return NewSimpleTest(Options{})(ctx)
}

// NewSimpleTest returns the simple test with the given options.
func NewSimpleTest(opts Options) tb.TestFunc {
	return func(ctx *tb.Ctx) error {
		o := opts.withDefaults()
		s := &simpleTest{ctx: ctx, opts: o}

		return s.run()
	}
}

type simpleTest struct {
	ctx     *tb.Ctx
	opts    Options
	p       *ports
	checker *writeEnableChecker
	rng     *rand.Rand
}

func (s *simpleTest) run() error {
	p, err := bindPorts(s.ctx)
	if err != nil {
		return err
	}

	s.p = p

	s.ctx.Logf("Seeding the random generator with %d", s.opts.Seed)
	s.rng = rand.New(rand.NewPCG(s.opts.Seed, s.opts.Seed))

	s.checker, err = watchWriteEnable(p)
	if err != nil {
		return err
	}
	defer s.checker.close()

	if err = initialize(s.ctx, p, s.opts); err != nil {
		return err
	}

	expected, err := s.writeAll()
	if err != nil {
		return err
	}

	if err = s.readAll(expected); err != nil {
		return err
	}

	if err = s.checker.Err(); err != nil {
		return err
	}

	s.ctx.Logf("Test is OK")

	return nil
}

func (s *simpleTest) numAddresses(addr *hdl.Signal) uint64 {
	n := uint64(1) << uint(addr.Len())

	if s.opts.LastAddressExclusive {
		n--
	}

	return n
}

func (s *simpleTest) values(n uint64) []uint64 {
	maxValue := min(s.opts.MaxValue, hdl.Mask(s.p.DIA.Len()))

	if s.opts.Distinct {
		if maxValue >= n-1 {
			return s.distinctValues(n, maxValue)
		}

		s.ctx.Logf("Cannot draw %d distinct values up to %d, "+
			"values may repeat", n, maxValue)
	}

	values := make([]uint64, n)
	for i := range values {
		values[i] = s.draw(maxValue)
	}

	return values
}

// draw returns a value in [0, maxValue].
func (s *simpleTest) draw(maxValue uint64) uint64 {
	if maxValue == math.MaxUint64 {
		return s.rng.Uint64()
	}

	return s.rng.Uint64N(maxValue + 1)
}

func (s *simpleTest) distinctValues(n, maxValue uint64) []uint64 {
	drawn := make(map[uint64]bool, n)
	values := make([]uint64, 0, n)

	for uint64(len(values)) < n {
		v := s.draw(maxValue)
		if drawn[v] {
			continue
		}

		drawn[v] = true
		values = append(values, v)
	}

	return values
}

func (s *simpleTest) writeAll() ([]uint64, error) {
	p := s.p
	n := s.numAddresses(p.ADDRA)

	if s.opts.LastAddressExclusive {
		s.ctx.Logf("Address %d is left out of the test", n)
	}

	s.ctx.Logf("Writing all addresses with random integer data")

	data := s.values(n)
	expected := make([]uint64, n)

	s.checker.writing = true
	defer func() { s.checker.writing = false }()

	for i := uint64(0); i < n; i++ {
		err := deposit(
			assignment{p.WEA, 1},
			assignment{p.ADDRA, i},
			assignment{p.DIA, data[i]},
		)
		if err != nil {
			return nil, err
		}

		if err := s.ctx.RisingEdge(p.CLKA); err != nil {
			return nil, err
		}

		expected[i] = data[i]
		s.ctx.Logf("%s was written at address: %s", p.DIA.Value(), p.ADDRA.Value())

		if err := p.WEA.Set(0); err != nil {
			return nil, err
		}
	}

	return expected, nil
}

func (s *simpleTest) readAll(expected []uint64) error {
	p := s.p
	n := min(s.numAddresses(p.ADDRB), uint64(len(expected)))

	s.ctx.Logf("Reading all memory addresses")

	for i := uint64(0); i < n; i++ {
		got, err := readBack(s.ctx, p, i, s.opts.ReadLatency)
		if err != nil {
			return err
		}

		if got != expected[i] {
			return &MismatchError{Addr: i, Expected: expected[i], Got: got}
		}

		s.ctx.Logf("Data at address %s is correct", p.ADDRB.Value())
	}

	return nil
}

// initialize starts the clocks and brings the RAM into a known state.
func initialize(ctx *tb.Ctx, p *ports, o Options) error {
	ctx.Logf("Init Clocks")

	if _, err := ctx.StartClock(p.CLKA, o.ClkPeriodA); err != nil {
		return err
	}

	if _, err := ctx.StartClock(p.CLKB, o.ClkPeriodB); err != nil {
		return err
	}

	ctx.Logf("Setup the initial state of signals")

	err := deposit(
		assignment{p.ENA, 1},
		assignment{p.ENB, 1},
		assignment{p.WEA, 0},
		assignment{p.ADDRA, 0},
		assignment{p.ADDRB, 0},
		assignment{p.DIA, 0},
		assignment{p.DOB, 0},
	)
	if err != nil {
		return err
	}

	return ctx.ClockCycles(p.CLKA, 2)
}

// readBack presents the address on port B and returns DOB after the given
// number of CLKB rising edges.
func readBack(ctx *tb.Ctx, p *ports, addr uint64, latency int) (uint64, error) {
	if err := p.ADDRB.Set(addr); err != nil {
		return 0, err
	}

	if err := ctx.ReadOnly(); err != nil {
		return 0, err
	}

	if err := ctx.ClockCycles(p.CLKB, latency); err != nil {
		return 0, err
	}

	return p.DOB.Uint(), nil
}

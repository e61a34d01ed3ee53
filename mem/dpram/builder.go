package dpram

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem"
	"github.com/sarchlab/dpramtb/sim/naming"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// Builder creates dual-port RAMs.
type Builder struct {
	engine      timing.Engine
	kernel      *hdl.Kernel
	addrWidth   int
	dataWidth   int
	readLatency int
	storage     *mem.Storage
}

// MakeBuilder returns a Builder for a 1024 x 16 RAM with one output register.
func MakeBuilder() Builder {
	return Builder{
		addrWidth:   10,
		dataWidth:   16,
		readLatency: 1,
	}
}

// WithEngine specifies the simulation engine. It defaults to the engine of
// the kernel.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithKernel specifies the kernel that owns the signals of the RAM.
func (b Builder) WithKernel(kernel *hdl.Kernel) Builder {
	b.kernel = kernel
	return b
}

// WithAddrWidth sets the number of address bits of both ports.
func (b Builder) WithAddrWidth(bits int) Builder {
	b.addrWidth = bits
	return b
}

// WithDataWidth sets the width of a word.
func (b Builder) WithDataWidth(bits int) Builder {
	b.dataWidth = bits
	return b
}

// WithReadLatency sets the number of output registers on port B.
func (b Builder) WithReadLatency(registers int) Builder {
	b.readLatency = registers
	return b
}

// WithStorage injects an existing backing storage.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// Build creates the RAM and its signals. The signals are named after the RAM,
// for example "DUT.CLKA" for a RAM named "DUT".
func (b Builder) Build(name string) (*Comp, error) {
	if err := b.validate(); err != nil {
		return nil, errors.Wrapf(err, "building %s", name)
	}

	engine := b.engine
	if engine == nil {
		engine = b.kernel.Engine()
	}

	c := &Comp{
		Scope:        hdl.NewScope(name),
		engine:       engine,
		kernel:       b.kernel,
		addrWidth:    b.addrWidth,
		dataWidth:    b.dataWidth,
		bytesPerWord: mem.BytesPerWord(b.dataWidth),
		outRegs:      make([]uint64, b.readLatency),
	}

	c.Storage = b.storage
	if c.Storage == nil {
		c.Storage = mem.NewStorage(c.Depth() * uint64(c.bytesPerWord))
	}

	if c.Storage.Capacity() < c.Depth()*uint64(c.bytesPerWord) {
		return nil, errors.Wrapf(mem.ErrOutOfCapacity,
			"building %s: storage of %d bytes cannot hold %d words",
			name, c.Storage.Capacity(), c.Depth())
	}

	if err := b.createSignals(c); err != nil {
		return nil, errors.Wrapf(err, "building %s", name)
	}

	b.subscribe(c)

	return c, nil
}

func (b Builder) validate() error {
	if b.kernel == nil {
		return errors.New("kernel must be specified")
	}

	if b.addrWidth < 1 || b.addrWidth > 32 {
		return errors.Errorf("address width %d not in [1, 32]", b.addrWidth)
	}

	if b.dataWidth < 1 || b.dataWidth > 64 {
		return errors.Errorf("data width %d not in [1, 64]", b.dataWidth)
	}

	if b.readLatency < 1 {
		return errors.Errorf("read latency must be at least 1, got %d",
			b.readLatency)
	}

	return nil
}

func (b Builder) createSignals(c *Comp) error {
	specs := []struct {
		target **hdl.Signal
		name   string
		width  int
	}{
		{&c.CLKA, "CLKA", 1},
		{&c.CLKB, "CLKB", 1},
		{&c.ENA, "ENA", 1},
		{&c.ENB, "ENB", 1},
		{&c.WEA, "WEA", 1},
		{&c.ADDRA, "ADDRA", b.addrWidth},
		{&c.ADDRB, "ADDRB", b.addrWidth},
		{&c.DIA, "DIA", b.dataWidth},
		{&c.DOB, "DOB", b.dataWidth},
	}

	for _, spec := range specs {
		s, err := b.kernel.NewSignal(
			naming.BuildName(c.Name(), spec.name), spec.width)
		if err != nil {
			return err
		}

		*spec.target = s
		c.Add(s)
	}

	return nil
}

func (b Builder) subscribe(c *Comp) {
	_, err := c.CLKA.Subscribe(hdl.EdgeRising, hdl.ListenerFunc(c.onClockA))
	if err != nil {
		panic(err)
	}

	_, err = c.CLKB.Subscribe(hdl.EdgeRising, hdl.ListenerFunc(c.onClockB))
	if err != nil {
		panic(err)
	}
}

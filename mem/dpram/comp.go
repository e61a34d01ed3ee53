package dpram

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
)

// Port identifies a port of the RAM.
type Port string

// The ports of the RAM.
const (
	PortA Port = "A"
	PortB Port = "B"
)

// HookPosWrite is triggered when a write is committed. The item is an Access.
var HookPosWrite = &hooking.HookPos{Name: "Write"}

// HookPosRead is triggered when a read word enters the output registers. The
// item is an Access.
var HookPosRead = &hooking.HookPos{Name: "Read"}

// Access describes a word moving in or out of the RAM.
type Access struct {
	Port Port
	Addr uint64
	Data uint64
	Time timing.VTime
}

// updateEvent commits the values sampled at a clock edge.
type updateEvent struct {
	timing.EventBase
}

// Comp is a dual-port RAM with a write port and a read port.
type Comp struct {
	*hdl.Scope
	hooking.HookableBase

	CLKA, CLKB, ENA, ENB, WEA *hdl.Signal
	ADDRA, ADDRB, DIA, DOB    *hdl.Signal
	Storage                   *mem.Storage

	engine       timing.Engine
	kernel       *hdl.Kernel
	addrWidth    int
	dataWidth    int
	bytesPerWord int

	outRegs         []uint64
	pendingWrites   []Access
	pendingReads    []Access
	updateScheduled bool
}

// Depth returns the number of words.
func (c *Comp) Depth() uint64 {
	return uint64(1) << uint(c.addrWidth)
}

// AddrWidth returns the number of address bits.
func (c *Comp) AddrWidth() int {
	return c.addrWidth
}

// DataWidth returns the number of bits of a word.
func (c *Comp) DataWidth() int {
	return c.dataWidth
}

// ReadLatency returns the number of output registers.
func (c *Comp) ReadLatency() int {
	return len(c.outRegs)
}

// Peek returns a word without going through the ports.
func (c *Comp) Peek(addr uint64) (uint64, error) {
	if addr >= c.Depth() {
		return 0, errors.Wrapf(mem.ErrOutOfCapacity,
			"%s has no address %d", c.Name(), addr)
	}

	return c.Storage.ReadWord(addr, c.bytesPerWord)
}

// Poke writes a word without going through the ports.
func (c *Comp) Poke(addr, v uint64) error {
	if addr >= c.Depth() {
		return errors.Wrapf(mem.ErrOutOfCapacity,
			"%s has no address %d", c.Name(), addr)
	}

	if !hdl.Fits(v, c.dataWidth) {
		return fmt.Errorf("%w: %d in a %d-bit word",
			hdl.ErrValueOutOfRange, v, c.dataWidth)
	}

	return c.Storage.WriteWord(addr, c.bytesPerWord, v)
}

func (c *Comp) onClockA(_ *hdl.Signal, _ hdl.Edge) {
	if !c.ENA.Bool() || !c.WEA.Bool() {
		return
	}

	c.pendingWrites = append(c.pendingWrites, Access{
		Port: PortA,
		Addr: c.ADDRA.Uint(),
		Data: c.DIA.Uint(),
		Time: c.engine.CurrentTime(),
	})
	c.scheduleUpdate()
}

func (c *Comp) onClockB(_ *hdl.Signal, _ hdl.Edge) {
	if !c.ENB.Bool() {
		return
	}

	addr := c.ADDRB.Uint()

	data, err := c.Storage.ReadWord(addr, c.bytesPerWord)
	if err != nil {
		panic(err)
	}

	c.pendingReads = append(c.pendingReads, Access{
		Port: PortB,
		Addr: addr,
		Data: data,
		Time: c.engine.CurrentTime(),
	})
	c.scheduleUpdate()
}

func (c *Comp) scheduleUpdate() {
	if c.updateScheduled {
		return
	}

	c.updateScheduled = true
	c.engine.Schedule(updateEvent{
		EventBase: timing.MakeEventBase(
			c.engine.CurrentTime(), timing.RegionNBA, c),
	})
}

// Handle commits the writes and reads sampled at the last clock edges.
func (c *Comp) Handle(e timing.Event) error {
	if _, ok := e.(updateEvent); !ok {
		return fmt.Errorf("%s cannot handle %T", c.Name(), e)
	}

	c.updateScheduled = false

	writes := c.pendingWrites
	reads := c.pendingReads
	c.pendingWrites = nil
	c.pendingReads = nil

	for _, w := range writes {
		err := c.Storage.WriteWord(w.Addr, c.bytesPerWord, w.Data)
		if err != nil {
			return err
		}

		c.invoke(HookPosWrite, w)
	}

	for _, r := range reads {
		copy(c.outRegs[1:], c.outRegs[:len(c.outRegs)-1])
		c.outRegs[0] = r.Data

		c.invoke(HookPosRead, r)
	}

	if len(reads) > 0 {
		return c.DOB.Drive(c.outRegs[len(c.outRegs)-1])
	}

	return nil
}

func (c *Comp) invoke(pos *hooking.HookPos, a Access) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   a,
	})
}

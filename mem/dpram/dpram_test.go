package dpram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
)

var _ = Describe("Builder", func() {
	var kernel *hdl.Kernel

	BeforeEach(func() {
		kernel = hdl.NewKernel(timing.NewSerialEngine())
	})

	It("should need a kernel", func() {
		_, err := MakeBuilder().Build("DUT")
		Expect(err).To(MatchError(ContainSubstring("kernel must be specified")))
	})

	It("should reject a read latency of 0", func() {
		_, err := MakeBuilder().
			WithKernel(kernel).
			WithReadLatency(0).
			Build("DUT")
		Expect(err).To(HaveOccurred())
	})

	It("should reject a storage that is too small", func() {
		_, err := MakeBuilder().
			WithKernel(kernel).
			WithStorage(mem.NewStorage(1024)).
			Build("DUT")
		Expect(err).To(MatchError(mem.ErrOutOfCapacity))
	})

	It("should create the signals", func() {
		ram, err := MakeBuilder().
			WithKernel(kernel).
			WithAddrWidth(4).
			WithDataWidth(8).
			Build("DUT")
		Expect(err).NotTo(HaveOccurred())

		Expect(ram.Signals()).To(HaveLen(9))
		Expect(ram.MustSignal("ADDRA").Len()).To(Equal(4))
		Expect(ram.MustSignal("DOB").Len()).To(Equal(8))
		Expect(ram.MustSignal("WEA").Len()).To(Equal(1))
		Expect(ram.ADDRB.Name()).To(Equal("DUT.ADDRB"))
		Expect(ram.Depth()).To(Equal(uint64(16)))
		Expect(ram.ReadLatency()).To(Equal(1))
	})
})

var _ = Describe("Comp", func() {
	var (
		engine *timing.SerialEngine
		kernel *hdl.Kernel
		ram    *Comp
	)

	build := func(latency int) {
		var err error
		ram, err = MakeBuilder().
			WithEngine(engine).
			WithKernel(kernel).
			WithReadLatency(latency).
			Build("DUT")
		Expect(err).NotTo(HaveOccurred())
	}

	drive := func(s *hdl.Signal, v uint64) {
		Expect(s.Drive(v)).To(Succeed())
	}

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		kernel = hdl.NewKernel(engine)
	})

	It("should write on the rising edge of CLKA", func() {
		build(1)

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENA, 1)
			drive(ram.WEA, 1)
			drive(ram.ADDRA, 3)
			drive(ram.DIA, 517)
			drive(ram.CLKA, 1)

			v, _ := ram.Peek(3)
			Expect(v).To(Equal(uint64(0)))
		})

		Expect(engine.Run()).To(Succeed())

		v, err := ram.Peek(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(517)))
	})

	It("should not write when WEA is low", func() {
		build(1)

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENA, 1)
			drive(ram.ADDRA, 3)
			drive(ram.DIA, 517)
			drive(ram.CLKA, 1)
		})

		Expect(engine.Run()).To(Succeed())

		v, _ := ram.Peek(3)
		Expect(v).To(Equal(uint64(0)))
	})

	It("should not react to falling edges", func() {
		build(1)
		drive(ram.CLKA, 1)

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENA, 1)
			drive(ram.WEA, 1)
			drive(ram.DIA, 9)
			drive(ram.CLKA, 0)
		})

		Expect(engine.Run()).To(Succeed())

		v, _ := ram.Peek(0)
		Expect(v).To(Equal(uint64(0)))
	})

	It("should show a read on DOB after the edge", func() {
		build(1)
		Expect(ram.Poke(5, 42)).To(Succeed())

		var dobAtEdge uint64

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENB, 1)
			drive(ram.ADDRB, 5)
			drive(ram.CLKB, 1)
			dobAtEdge = ram.DOB.Uint()
		})

		Expect(engine.Run()).To(Succeed())
		Expect(dobAtEdge).To(Equal(uint64(0)))
		Expect(ram.DOB.Uint()).To(Equal(uint64(42)))
	})

	It("should delay reads through the output registers", func() {
		build(2)
		Expect(ram.Poke(5, 42)).To(Succeed())

		var afterFirst uint64

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENB, 1)
			drive(ram.ADDRB, 5)
			drive(ram.CLKB, 1)
		})
		at(engine, 0, timing.RegionReadOnly, func() {
			afterFirst = ram.DOB.Uint()
		})
		at(engine, 2*timing.NS, timing.RegionActive, func() {
			drive(ram.CLKB, 0)
		})
		at(engine, 4*timing.NS, timing.RegionActive, func() {
			drive(ram.CLKB, 1)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(afterFirst).To(Equal(uint64(0)))
		Expect(ram.DOB.Uint()).To(Equal(uint64(42)))
	})

	It("should hold DOB while ENB is low", func() {
		build(1)
		Expect(ram.Poke(5, 42)).To(Succeed())
		drive(ram.DOB, 7)

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ADDRB, 5)
			drive(ram.CLKB, 1)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(ram.DOB.Uint()).To(Equal(uint64(7)))
	})

	It("should return the old word on a simultaneous write and read", func() {
		build(1)
		Expect(ram.Poke(3, 1)).To(Succeed())

		at(engine, 0, timing.RegionActive, func() {
			drive(ram.ENA, 1)
			drive(ram.ENB, 1)
			drive(ram.WEA, 1)
			drive(ram.ADDRA, 3)
			drive(ram.ADDRB, 3)
			drive(ram.DIA, 2)
			drive(ram.CLKA, 1)
			drive(ram.CLKB, 1)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(ram.DOB.Uint()).To(Equal(uint64(1)))

		v, _ := ram.Peek(3)
		Expect(v).To(Equal(uint64(2)))
	})

	It("should invoke hooks on accesses", func() {
		build(1)

		var accesses []Access
		var positions []*hooking.HookPos
		ram.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
			accesses = append(accesses, ctx.Item.(Access))
		}))

		at(engine, 2*timing.NS, timing.RegionActive, func() {
			drive(ram.ENA, 1)
			drive(ram.ENB, 1)
			drive(ram.WEA, 1)
			drive(ram.ADDRA, 8)
			drive(ram.DIA, 100)
			drive(ram.ADDRB, 8)
			drive(ram.CLKA, 1)
		})
		at(engine, 4*timing.NS, timing.RegionActive, func() {
			drive(ram.CLKB, 1)
		})

		Expect(engine.Run()).To(Succeed())

		Expect(positions).To(Equal([]*hooking.HookPos{HookPosWrite, HookPosRead}))
		Expect(accesses).To(Equal([]Access{
			{Port: PortA, Addr: 8, Data: 100, Time: 2 * timing.NS},
			{Port: PortB, Addr: 8, Data: 100, Time: 4 * timing.NS},
		}))
	})

	It("should check backdoor accesses", func() {
		build(1)

		_, err := ram.Peek(1024)
		Expect(err).To(MatchError(mem.ErrOutOfCapacity))
		Expect(ram.Poke(1024, 0)).To(MatchError(mem.ErrOutOfCapacity))
		Expect(ram.Poke(0, 1<<16)).To(MatchError(hdl.ErrValueOutOfRange))
	})
})

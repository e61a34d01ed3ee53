package hdl

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dpramtb/sim/timing"
)

var _ = Describe("Clock", func() {
	var (
		engine *timing.SerialEngine
		kernel *Kernel
		clkSig *Signal
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		kernel = NewKernel(engine)
		clkSig, _ = kernel.NewSignal("DUT.CLKA", 1)
	})

	It("should reject bad periods", func() {
		_, err := NewClock("ClkA", engine, clkSig, 3)
		Expect(err).To(MatchError(ErrInvalidPeriod))

		_, err = NewClock("ClkA", engine, clkSig, 0)
		Expect(err).To(MatchError(ErrInvalidPeriod))
	})

	It("should reject vector signals", func() {
		bus, _ := kernel.NewSignal("DUT.ADDRA", 10)
		_, err := NewClock("ClkA", engine, bus, 2*timing.NS)
		Expect(err).To(MatchError(ErrEdgeNeedsOneBit))
	})

	It("should toggle every half period", func() {
		clk, err := NewClock("ClkA", engine, clkSig, 2*timing.NS)
		Expect(err).NotTo(HaveOccurred())

		var rises, falls []timing.VTime
		_, _ = clkSig.Subscribe(EdgeAny, ListenerFunc(func(_ *Signal, e Edge) {
			if e == EdgeRising {
				rises = append(rises, engine.CurrentTime())
			} else {
				falls = append(falls, engine.CurrentTime())
			}
		}))

		at(engine, 7*timing.NS, timing.RegionActive, clk.Stop)
		clk.Start()
		Expect(clk.Running()).To(BeTrue())

		Expect(engine.Run()).To(Succeed())

		Expect(rises).To(Equal([]timing.VTime{
			0, 2 * timing.NS, 4 * timing.NS, 6 * timing.NS,
		}))
		Expect(falls).To(Equal([]timing.VTime{
			1 * timing.NS, 3 * timing.NS, 5 * timing.NS,
		}))
		Expect(clk.Running()).To(BeFalse())
		Expect(clkSig.Uint()).To(Equal(uint64(1)))
	})

	It("should keep two clocks in phase", func() {
		clkBSig, _ := kernel.NewSignal("DUT.CLKB", 1)
		a, _ := NewClock("ClkA", engine, clkSig, 2*timing.NS)
		b, _ := NewClock("ClkB", engine, clkBSig, 4*timing.NS)

		risesA, risesB := 0, 0
		_, _ = clkSig.Subscribe(EdgeRising, ListenerFunc(func(*Signal, Edge) {
			risesA++
		}))
		_, _ = clkBSig.Subscribe(EdgeRising, ListenerFunc(func(*Signal, Edge) {
			risesB++
		}))

		at(engine, 15*timing.NS, timing.RegionActive, func() {
			a.Stop()
			b.Stop()
		})
		a.Start()
		b.Start()

		Expect(engine.Run()).To(Succeed())
		Expect(risesA).To(Equal(8))
		Expect(risesB).To(Equal(4))
	})
})

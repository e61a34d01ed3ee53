package regression

import (
	"errors"
	"log"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/sarchlab/dpramtb/tb"
)

func runTest(fn tb.TestFunc, cfg DesignConfig, setups ...Setup) tb.Result {
	runner := tb.MakeRunnerBuilder().
		WithFactory(NewFactory(cfg, setups...)).
		WithLogger(log.New(GinkgoWriter, "", 0)).
		WithTimeLimit(1 * timing.MS).
		Build()

	return runner.Run(tb.Test{Name: "t", Func: fn})
}

func recordWrites(writes *[]dpram.Access) Setup {
	return func(_ string, _ *tb.Simulation, ram *dpram.Comp) error {
		ram.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == dpram.HookPosWrite {
				*writes = append(*writes, ctx.Item.(dpram.Access))
			}
		}))

		return nil
	}
}

var _ = Describe("WriteReadTest", func() {
	It("should read back 517 from address 3", func() {
		var writes []dpram.Access

		res := runTest(WriteReadTest, DefaultDesign, recordWrites(&writes))

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
		Expect(res.SimTime).To(Equal(12 * timing.NS))
		Expect(writes).To(Equal([]dpram.Access{
			{Port: dpram.PortA, Addr: 3, Data: 517, Time: 4 * timing.NS},
		}))
	})

	It("should fail when the output is read one edge early", func() {
		res := runTest(func(ctx *tb.Ctx) error {
			return writeRead(ctx, 3, 517, Options{ReadLatency: 1}.withDefaults())
		}, DefaultDesign)

		Expect(res.Outcome).To(Equal(tb.OutcomeFail))

		var mismatch *MismatchError
		Expect(errors.As(res.Err, &mismatch)).To(BeTrue())
		Expect(mismatch.Addr).To(Equal(uint64(3)))
		Expect(mismatch.Expected).To(Equal(uint64(517)))
		Expect(mismatch.Got).To(Equal(uint64(0)))
	})
})

var _ = Describe("SimpleTest", func() {
	It("should pass on every address", func() {
		var writes []dpram.Access

		res := runTest(
			NewSimpleTest(Options{Seed: 1}),
			DefaultDesign,
			recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
		Expect(writes).To(HaveLen(1024))

		for i, w := range writes {
			Expect(w.Addr).To(Equal(uint64(i)))
			Expect(w.Data).To(BeNumerically("<=", DefaultMaxValue))
		}
	})

	It("should pass with the default options", func() {
		res := runTest(SimpleTest, DefaultDesign)
		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
	})

	It("should reproduce distinct values on every address", func() {
		var writes []dpram.Access

		res := runTest(
			NewSimpleTest(Options{Seed: 7, Distinct: true}),
			DefaultDesign,
			recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)

		seen := make(map[uint64]bool)
		for _, w := range writes {
			Expect(seen).NotTo(HaveKey(w.Data))
			seen[w.Data] = true
		}
	})

	It("should fail when the output is read one edge early", func() {
		res := runTest(
			NewSimpleTest(Options{Seed: 3, Distinct: true, ReadLatency: 1}),
			DefaultDesign,
		)

		Expect(res.Outcome).To(Equal(tb.OutcomeFail))

		var mismatch *MismatchError
		Expect(errors.As(res.Err, &mismatch)).To(BeTrue())
		Expect(mismatch.Addr).To(Equal(uint64(1)))
		Expect(res.Message).To(ContainSubstring(
			"Data read at address 1 is not correct"))
	})

	It("should detect a corrupted word", func() {
		corrupt := func(_ string, _ *tb.Simulation, ram *dpram.Comp) error {
			ram.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				a := ctx.Item.(dpram.Access)
				if ctx.Pos == dpram.HookPosWrite && a.Addr == 5 {
					Expect(ram.Poke(5, a.Data^1)).To(Succeed())
				}
			}))

			return nil
		}

		res := runTest(NewSimpleTest(Options{Seed: 11}), DefaultDesign, corrupt)

		Expect(res.Outcome).To(Equal(tb.OutcomeFail))

		var mismatch *MismatchError
		Expect(errors.As(res.Err, &mismatch)).To(BeTrue())
		Expect(mismatch.Addr).To(Equal(uint64(5)))
		Expect(mismatch.Got).To(Equal(mismatch.Expected ^ 1))
	})

	It("should keep WEA low outside of the write phase", func() {
		type sample struct {
			time timing.VTime
			wea  uint64
		}

		var (
			samples []sample
			writes  []dpram.Access
		)

		watch := func(_ string, sim *tb.Simulation, ram *dpram.Comp) error {
			_, err := ram.CLKA.Subscribe(hdl.EdgeRising, hdl.ListenerFunc(
				func(*hdl.Signal, hdl.Edge) {
					samples = append(samples, sample{
						time: sim.Engine.CurrentTime(),
						wea:  ram.WEA.Uint(),
					})
				}))

			return err
		}

		res := runTest(
			NewSimpleTest(Options{Seed: 5}),
			DesignConfig{AddrWidth: 4, DataWidth: 16, ReadLatency: 1},
			watch, recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
		Expect(writes).To(HaveLen(16))

		first := writes[0].Time
		last := writes[len(writes)-1].Time

		for _, s := range samples {
			if s.time >= first && s.time <= last {
				Expect(s.wea).To(Equal(uint64(1)))
			} else {
				Expect(s.wea).To(Equal(uint64(0)), "at %s", s.time)
			}
		}
	})

	It("should fail when WEA is asserted outside of a write", func() {
		raiseWEA := func(_ string, _ *tb.Simulation, ram *dpram.Comp) error {
			ram.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				a := ctx.Item.(dpram.Access)
				if ctx.Pos == dpram.HookPosRead && a.Addr == 4 {
					Expect(ram.WEA.Drive(1)).To(Succeed())
				}
			}))

			return nil
		}

		res := runTest(
			NewSimpleTest(Options{Seed: 6}),
			DesignConfig{AddrWidth: 3, DataWidth: 16, ReadLatency: 1},
			raiseWEA,
		)

		Expect(res.Outcome).To(Equal(tb.OutcomeFail))
		Expect(res.Message).To(ContainSubstring(
			"WEA asserted outside of a write"))
	})

	It("should draw from the full range of a 64-bit word", func() {
		var writes []dpram.Access

		res := runTest(
			NewSimpleTest(Options{Seed: 1, MaxValue: math.MaxUint64}),
			DesignConfig{AddrWidth: 2, DataWidth: 64, ReadLatency: 1},
			recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
		Expect(writes).To(HaveLen(4))
		Expect(writes).To(ContainElement(
			HaveField("Data", BeNumerically(">", uint64(math.MaxUint32)))))

		res = runTest(
			NewSimpleTest(Options{
				Seed:     3,
				MaxValue: math.MaxUint64,
				Distinct: true,
			}),
			DesignConfig{AddrWidth: 2, DataWidth: 64, ReadLatency: 1},
		)
		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
	})

	It("should leave the last address out when asked", func() {
		var writes []dpram.Access

		res := runTest(
			NewSimpleTest(Options{Seed: 2, LastAddressExclusive: true}),
			DesignConfig{AddrWidth: 3, DataWidth: 16, ReadLatency: 1},
			recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)
		Expect(writes).To(HaveLen(7))

		for _, w := range writes {
			Expect(w.Addr).NotTo(Equal(uint64(7)))
		}
	})

	It("should clamp the values to the data width", func() {
		var writes []dpram.Access

		res := runTest(
			NewSimpleTest(Options{Seed: 9}),
			DesignConfig{AddrWidth: 4, DataWidth: 4, ReadLatency: 1},
			recordWrites(&writes),
		)

		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)

		for _, w := range writes {
			Expect(w.Data).To(BeNumerically("<", 16))
		}
	})

	It("should follow a deeper output pipeline", func() {
		design := DesignConfig{AddrWidth: 4, DataWidth: 16, ReadLatency: 2}

		res := runTest(NewSimpleTest(Options{Seed: 4, ReadLatency: 3}), design)
		Expect(res.Outcome).To(Equal(tb.OutcomePass), res.Message)

		res = runTest(NewSimpleTest(Options{Seed: 4, Distinct: true}), design)
		Expect(res.Outcome).To(Equal(tb.OutcomeFail))
	})

	It("should error on a missing signal", func() {
		res := runTest(SimpleTest, DefaultDesign,
			func(_ string, sim *tb.Simulation, _ *dpram.Comp) error {
				sim.DUT = hdl.NewScope("Empty")
				return nil
			})

		Expect(res.Outcome).To(Equal(tb.OutcomeError))
		Expect(res.Err).To(MatchError(hdl.ErrSignalNotFound))
	})
})

var _ = Describe("Registry", func() {
	It("should list the tests", func() {
		tests := Tests()

		Expect(tests).To(HaveLen(2))
		Expect(tests[0].Name).To(Equal("simple_test"))
		Expect(tests[1].Name).To(Equal("write_read_test"))
	})

	It("should select tests by name", func() {
		selected, err := Select(Tests(), []string{"write_read_test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(selected).To(HaveLen(1))

		all, _ := Select(Tests(), nil)
		Expect(all).To(HaveLen(2))

		_, err = Select(Tests(), []string{"missing_test"})
		Expect(err).To(MatchError("unknown test missing_test"))
	})

	It("should run the registered tests", func() {
		runner := tb.MakeRunnerBuilder().
			WithFactory(NewFactory(DefaultDesign)).
			WithLogger(log.New(GinkgoWriter, "", 0)).
			Build()

		results := runner.RunAll(NewTests(Options{Seed: 42}))
		Expect(tb.AllPassed(results)).To(BeTrue())
	})
})

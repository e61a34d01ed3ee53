package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/sim/timing"
)

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *timing.SerialEngine
		ram    *dpram.Comp
		router http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		kernel := hdl.NewKernel(engine)

		var err error
		ram, err = dpram.MakeBuilder().
			WithKernel(kernel).
			WithAddrWidth(4).
			Build("DUT")
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor()
		router = m.Router()
	})

	It("should answer 503 without a simulation", func() {
		Expect(get("/api/now").Code).To(Equal(http.StatusServiceUnavailable))
		Expect(get("/api/signals").Code).To(Equal(http.StatusNotFound))
	})

	It("should list the routes", func() {
		var r []string
		decode(get("/"), &r)
		Expect(r).To(ContainElement("/api/signals"))
	})

	It("should report the time", func() {
		m.RegisterEngine(engine)

		var rsp nowRsp
		decode(get("/api/now"), &rsp)

		Expect(rsp.NowPS).To(Equal(uint64(0)))
		Expect(rsp.Region).To(Equal("Active"))
		Expect(rsp.Paused).To(BeFalse())
	})

	It("should pause and continue the engine", func() {
		m.RegisterEngine(engine)

		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))

		var rsp nowRsp
		decode(get("/api/now"), &rsp)
		Expect(rsp.Paused).To(BeTrue())

		Expect(get("/api/signals").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))

		decode(get("/api/now"), &rsp)
		Expect(rsp.Paused).To(BeFalse())
	})

	It("should list components", func() {
		m.RegisterEngine(engine)
		m.RegisterDesign(ram)
		m.RegisterDesign(ram)

		var names []string
		decode(get("/api/list_components"), &names)
		Expect(names).To(Equal([]string{"DUT"}))

		Expect(get("/api/component/Nothing").Code).To(Equal(http.StatusNotFound))
	})

	It("should show the signals", func() {
		m.RegisterEngine(engine)
		m.RegisterDesign(ram)

		Expect(ram.DIA.Drive(517)).To(Succeed())

		var all []signalRsp
		decode(get("/api/signals"), &all)
		Expect(all).To(HaveLen(9))

		var one signalRsp
		decode(get("/api/signal/DIA"), &one)
		Expect(one).To(Equal(signalRsp{
			Name:   "DUT.DIA",
			Width:  16,
			Value:  517,
			Binary: "0000001000000101",
		}))

		Expect(get("/api/signal/NOPE").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		m.RegisterDesign(ram)
		Expect(get("/api/field/notjson").Code).To(Equal(http.StatusBadRequest))
	})

	It("should report resources", func() {
		var rsp resourceRsp
		decode(get("/api/resource"), &rsp)
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("simple_test writes", 16)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		var bars []map[string]any
		decode(get("/api/progress"), &bars)
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("simple_test writes"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 1))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)
		Expect(m.ProgressBars()).To(BeEmpty())
	})

	It("should reject low port numbers", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(32776).portNumber).To(Equal(32776))
	})
})

var _ = Describe("AccessProgress", func() {
	It("should count distinct addresses", func() {
		m := NewMonitor()
		p := NewAccessProgress(m, "simple_test", 4)

		access := func(pos *hooking.HookPos, addr uint64) {
			p.Func(hooking.HookCtx{
				Pos:  pos,
				Item: dpram.Access{Addr: addr},
			})
		}

		access(dpram.HookPosRead, 0)
		access(dpram.HookPosWrite, 0)
		access(dpram.HookPosWrite, 0)
		access(dpram.HookPosWrite, 1)
		access(dpram.HookPosRead, 1)
		access(dpram.HookPosRead, 1)

		Expect(p.writeBar.Finished).To(Equal(uint64(2)))
		Expect(p.readBar.Finished).To(Equal(uint64(1)))
		Expect(m.ProgressBars()).To(HaveLen(2))

		p.Complete()
		Expect(m.ProgressBars()).To(BeEmpty())
	})
})

// Package monitoring turns a running regression into a web server that can
// be inspected and paused.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/sim/id"
	"github.com/sarchlab/dpramtb/sim/naming"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	lock        sync.Mutex
	engine      timing.Engine
	design      hdl.Design
	components  []naming.Named
	portNumber  int
	openBrowser bool
	paused      bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open the default browser when the server
// starts.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.engine = e
	m.paused = false
}

// RegisterDesign registers the design whose signals are shown. The design is
// also registered as a component.
func (m *Monitor) RegisterDesign(d hdl.Design) {
	m.lock.Lock()
	m.design = d
	m.lock.Unlock()

	m.RegisterComponent(d)
}

// RegisterComponent register a component to be monitored. A component with
// the same name replaces the one registered before.
func (m *Monitor) RegisterComponent(c naming.Named) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i, existing := range m.components {
		if existing.Name() == c.Name() {
			m.components[i] = c
			return
		}
	}

	m.components = append(m.components, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// ProgressBars returns the bars that are not completed.
func (m *Monitor) ProgressBars() []*ProgressBar {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]*ProgressBar, len(m.progressBars))
	copy(bars, m.progressBars)

	return bars
}

// Router returns the handler that serves the monitoring API.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", m.index)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/signals", m.listSignals)
	r.HandleFunc("/api/signal/{name}", m.signalDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("cannot open the browser: %v", err)
		}
	}

	return url
}

var routes = []string{
	"/api/pause",
	"/api/continue",
	"/api/now",
	"/api/list_components",
	"/api/component/{name}",
	"/api/field/{json}",
	"/api/signals",
	"/api/signal/{name}",
	"/api/progress",
	"/api/resource",
	"/api/profile",
}

func (m *Monitor) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, routes)
}

func (m *Monitor) currentEngine(w http.ResponseWriter) timing.Engine {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, err := w.Write([]byte("No simulation is running"))
		dieOnErr(err)
	}

	return m.engine
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	engine := m.currentEngine(w)
	if engine == nil {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.paused {
		engine.Pause()
		m.paused = true
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	engine := m.currentEngine(w)
	if engine == nil {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.paused {
		engine.Continue()
		m.paused = false
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now    float64 `json:"now"`
	NowPS  uint64  `json:"now_ps"`
	Region string  `json:"region"`
	Paused bool    `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	engine := m.currentEngine(w)
	if engine == nil {
		return
	}

	m.lock.Lock()
	paused := m.paused
	m.lock.Unlock()

	now := engine.CurrentTime()
	writeJSON(w, nowRsp{
		Now:    now.InSec(),
		NowPS:  uint64(now),
		Region: engine.CurrentRegion().String(),
		Paused: paused,
	})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	m.withSimulationHeld(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(w)

		dieOnErr(err)
	})
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	m.withSimulationHeld(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(component)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: %s", err)

			return
		}

		err = serializer.Serialize(w)
		dieOnErr(err)
	})
}

type signalRsp struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Value  uint64 `json:"value"`
	Binary string `json:"binary"`
}

func makeSignalRsp(s *hdl.Signal) signalRsp {
	v := s.Value()

	return signalRsp{
		Name:   s.Name(),
		Width:  s.Len(),
		Value:  v.Integer(),
		Binary: v.String(),
	}
}

func (m *Monitor) currentDesign(w http.ResponseWriter) hdl.Design {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.design == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No design registered"))
		dieOnErr(err)
	}

	return m.design
}

func (m *Monitor) listSignals(w http.ResponseWriter, _ *http.Request) {
	design := m.currentDesign(w)
	if design == nil {
		return
	}

	var rsp []signalRsp

	m.withSimulationHeld(func() {
		for _, s := range design.Signals() {
			rsp = append(rsp, makeSignalRsp(s))
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) signalDetails(w http.ResponseWriter, r *http.Request) {
	design := m.currentDesign(w)
	if design == nil {
		return
	}

	s, err := design.Signal(mux.Vars(r)["name"])
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, err = w.Write([]byte(err.Error()))
		dieOnErr(err)

		return
	}

	var rsp signalRsp

	m.withSimulationHeld(func() {
		rsp = makeSignalRsp(s)
	})

	writeJSON(w, rsp)
}

// withSimulationHeld runs f between two events of the simulation.
func (m *Monitor) withSimulationHeld(f func()) {
	m.lock.Lock()
	engine := m.engine
	paused := m.paused
	m.lock.Unlock()

	if engine == nil || paused {
		f()
		return
	}

	engine.Pause()
	defer engine.Continue()

	f()
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) naming.Named {
	m.lock.Lock()
	defer m.lock.Unlock()

	var component naming.Named
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	bars := m.ProgressBars()
	for _, b := range bars {
		b.Lock()
	}

	bytes, err := json.Marshal(bars)

	for _, b := range bars {
		b.Unlock()
	}

	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

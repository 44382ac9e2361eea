// Package monitoring turns a running simulation into a web server so that
// the attributes can be watched and controlled from a browser.
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
	"sync/atomic"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/monitoring/web"
	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/id"
	"github.com/sarchlab/attrsim/sim/timing"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine     timing.Engine
	portNumber int

	attributesLock sync.Mutex
	attributes     []*attribute.Attribute

	pauseLock sync.Mutex
	paused    bool

	// runFinished is set when the engine reports the end of a run and
	// cleared when it handles an event again.
	runFinished atomic.Bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// not allowed and a random port is used instead.
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

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
	e.AcceptHook(m)
	e.RegisterSimulationEndHandler(m)
}

// Func marks the run as ongoing whenever the engine handles an event.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	if ctx.Pos == timing.HookPosBeforeEvent {
		m.runFinished.Store(false)
	}
}

// Handle marks the run as finished. No more ticks are processed until the
// engine runs again.
func (m *Monitor) Handle(_ timing.VTimeInSec) {
	m.runFinished.Store(true)
}

// RegisterAttribute registers an attribute to be monitored.
func (m *Monitor) RegisterAttribute(a *attribute.Attribute) {
	m.attributesLock.Lock()
	defer m.attributesLock.Unlock()

	m.attributes = append(m.attributes, a)
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

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_attributes", m.listAttributes)
	r.HandleFunc("/api/attribute/{name}", m.attributeSnapshot)
	r.HandleFunc("/api/attribute/{name}/inspect", m.inspectAttribute)
	r.HandleFunc("/api/attribute/{name}/start", m.startAttribute).
		Methods(http.MethodPost)
	r.HandleFunc("/api/attribute/{name}/stop", m.stopAttribute).
		Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server in the background and
// returns the port it listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(os.Stderr,
		"Monitoring simulation with http://localhost:%d\n", port)

	handler := m.router()

	go func() {
		err := http.Serve(listener, handler)
		if err != nil && !isClosedErr(err) {
			log.Panic(err)
		}
	}()

	return port
}

// StopServer closes the listener opened by StartServer.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

// OpenInBrowser opens the monitoring page in the default browser.
func (m *Monitor) OpenInBrowser() error {
	if m.listener == nil {
		return fmt.Errorf("monitoring server is not started")
	}

	port := m.listener.Addr().(*net.TCPAddr).Port

	return browser.OpenURL(fmt.Sprintf("http://localhost:%d", port))
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if !m.paused {
		m.engine.Pause()
		m.paused = true
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if m.paused {
		m.engine.Continue()
		m.paused = false
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

// whilePaused runs f while no event is being handled.
func (m *Monitor) whilePaused(f func() error) error {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if !m.paused {
		m.engine.Pause()
		defer m.engine.Continue()
	}

	return f()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) listAttributes(w http.ResponseWriter, _ *http.Request) {
	m.attributesLock.Lock()
	names := make([]string, 0, len(m.attributes))
	for _, a := range m.attributes {
		names = append(names, a.Name())
	}
	m.attributesLock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) attributeSnapshot(w http.ResponseWriter, r *http.Request) {
	a := m.findAttributeOr404(w, mux.Vars(r)["name"])
	if a == nil {
		return
	}

	writeJSON(w, a.Snapshot())
}

// inspectAttribute serializes the state of the attribute with goseth. The
// optional field query parameter is a dot-separated path into it.
func (m *Monitor) inspectAttribute(w http.ResponseWriter, r *http.Request) {
	a := m.findAttributeOr404(w, mux.Vars(r)["name"])
	if a == nil {
		return
	}

	snapshot := a.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(2)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var buf bytes.Buffer
	if err := serializer.Serialize(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

// startAttribute refuses to start an attribute after the run has finished,
// since no engine would process its ticks.
func (m *Monitor) startAttribute(w http.ResponseWriter, r *http.Request) {
	a := m.findAttributeOr404(w, mux.Vars(r)["name"])
	if a == nil {
		return
	}

	if m.runFinished.Load() {
		http.Error(w, "simulation has finished", http.StatusConflict)
		return
	}

	m.controlAttribute(w, a, a.StartUpdateHandler)
}

func (m *Monitor) stopAttribute(w http.ResponseWriter, r *http.Request) {
	a := m.findAttributeOr404(w, mux.Vars(r)["name"])
	if a == nil {
		return
	}

	m.controlAttribute(w, a, a.StopUpdateHandler)
}

func (m *Monitor) controlAttribute(
	w http.ResponseWriter,
	a *attribute.Attribute,
	action func() error,
) {
	if err := m.whilePaused(action); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, a.Snapshot())
}

func (m *Monitor) findAttributeOr404(
	w http.ResponseWriter,
	name string,
) *attribute.Attribute {
	m.attributesLock.Lock()
	defer m.attributesLock.Unlock()

	for _, a := range m.attributes {
		if a.Name() == name {
			return a
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Attribute not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
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
		http.Error(w, err.Error(), http.StatusConflict)
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

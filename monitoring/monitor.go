// Package monitoring turns running paging simulations into a small web
// service.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/pagesim/mem/vm/paging"
	"github.com/sarchlab/pagesim/sim"
)

type simulationView struct {
	Name      string          `json:"name"`
	Policy    string          `json:"policy"`
	NumFrames int             `json:"num_frames"`
	State     string          `json:"state"`
	Now       uint64          `json:"now"`
	Counters  paging.Counters `json:"counters"`
	MissRate  float64         `json:"miss_rate"`

	frames []paging.Frame
}

// A frameSnapshot is the frame table of a simulation as of Time.
type frameSnapshot struct {
	Simulation string
	Time       uint64
	Frames     []paging.Frame
}

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation.
type Monitor struct {
	portNumber       int
	snapshotInterval uint64

	lock        sync.Mutex
	simulations []*simulationView
	byDomain    map[*paging.Simulation]*simulationView

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		snapshotInterval: 1024,
		byDomain:         make(map[*paging.Simulation]*simulationView),
	}
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

// WithSnapshotInterval sets how many accesses pass between two copies of the
// frame table.
func (m *Monitor) WithSnapshotInterval(accesses uint64) *Monitor {
	if accesses == 0 {
		accesses = 1
	}

	m.snapshotInterval = accesses

	return m
}

// RegisterSimulation makes the simulation visible to the monitor. It must be
// called before the simulation runs.
func (m *Monitor) RegisterSimulation(s *paging.Simulation) {
	m.lock.Lock()
	defer m.lock.Unlock()

	view := &simulationView{
		Name:      s.Name(),
		Policy:    s.Policy().String(),
		NumFrames: s.NumFrames(),
		State:     s.State().String(),
		frames:    s.Frames(),
	}

	m.simulations = append(m.simulations, view)
	m.byDomain[s] = view

	s.AcceptHook(m)
}

// Func updates the view of a simulation. It runs on the goroutine of the
// simulation, which is the only place the frame table can be read.
func (m *Monitor) Func(ctx sim.HookCtx) {
	s, ok := ctx.Domain.(*paging.Simulation)
	if !ok {
		return
	}

	if ctx.Pos != paging.HookPosAccess && ctx.Pos != paging.HookPosDone {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	view, found := m.byDomain[s]
	if !found {
		return
	}

	counters := s.Counters()
	view.Counters = counters
	view.MissRate = counters.MissRate()
	view.Now = uint64(s.CurrentTime())
	view.State = s.State().String()

	if ctx.Pos == paging.HookPosDone ||
		counters.Accesses%m.snapshotInterval == 0 {
		view.frames = s.Frames()
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:        sim.GetIDGenerator().Generate(),
		name:      name,
		startTime: time.Now(),
		total:     total,
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

// Router returns the HTTP handler that serves the monitoring API.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/simulations", m.listSimulations)
	r.HandleFunc("/api/simulation/{name}", m.simulationDetails)
	r.HandleFunc("/api/frames/{name}", m.listFrames)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			log.Panic(err)
		}
	}()

	return url, nil
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenInBrowser opens the simulation list in the default browser.
func (m *Monitor) OpenInBrowser(url string) error {
	return browser.OpenURL(url + "/api/simulations")
}

func (m *Monitor) listSimulations(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	views := make([]simulationView, 0, len(m.simulations))
	for _, v := range m.simulations {
		views = append(views, *v)
	}
	m.lock.Unlock()

	writeJSON(w, views)
}

func (m *Monitor) findSimulationOr404(
	w http.ResponseWriter,
	name string,
) (simulationView, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, v := range m.simulations {
		if v.Name == name {
			view := *v
			view.frames = append([]paging.Frame(nil), v.frames...)

			return view, true
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Simulation not found"))
	dieOnErr(err)

	return simulationView{}, false
}

func (m *Monitor) simulationDetails(w http.ResponseWriter, r *http.Request) {
	view, found := m.findSimulationOr404(w, mux.Vars(r)["name"])
	if !found {
		return
	}

	writeJSON(w, view)
}

func (m *Monitor) listFrames(w http.ResponseWriter, r *http.Request) {
	view, found := m.findSimulationOr404(w, mux.Vars(r)["name"])
	if !found {
		return
	}

	snapshot := &frameSnapshot{
		Simulation: view.Name,
		Time:       view.Now,
		Frames:     view.frames,
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(snapshot)
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, views)
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

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

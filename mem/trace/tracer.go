package trace

import (
	"log"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/vm/paging"
	"github.com/sarchlab/pagesim/sim"
)

// A tracer is a hook that prints what a paging simulation does, in the format
// of the classic command line simulator.
type tracer struct {
	logger         *log.Logger
	printEvictions bool
}

// NewTracer creates a hook that prints eviction events and the final summary
// to the logger. The logger should not add prefixes or flags.
func NewTracer(logger *log.Logger) sim.Hook {
	t := new(tracer)
	t.logger = logger
	t.printEvictions = true

	return t
}

// NewSummaryTracer creates a hook that only prints the final summary.
func NewSummaryTracer(logger *log.Logger) sim.Hook {
	t := new(tracer)
	t.logger = logger

	return t
}

func (t *tracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case paging.HookPosEviction:
		if t.printEvictions {
			t.eviction(ctx.Detail.(paging.EvictionEvent))
		}
	case paging.HookPosDone:
		t.summary(ctx.Detail.(paging.Counters))
	}
}

func (t *tracer) eviction(e paging.EvictionEvent) {
	if e.WasDirty {
		t.logger.Printf(
			"Page 0x%05x was read from disk, page 0x%05x was written to the disk.\n",
			uint64(e.IncomingPage), uint64(e.EvictedPage))

		return
	}

	t.logger.Printf(
		"Page 0x%05x was read from disk, page 0x%05x was dropped (it was not dirty).\n",
		uint64(e.IncomingPage), uint64(e.EvictedPage))
}

func (t *tracer) summary(c paging.Counters) {
	t.logger.Printf(
		"Number of memory accesses:%d\nNumber of misses:%d\n"+
			"Number of writes:%d\nNumber of drops:%d\n",
		c.Accesses, c.Misses, c.WritesToDisk, c.CleanDrops)
}

// An EvictionEntry is an eviction as stored in the database.
type EvictionEntry struct {
	ID           string
	Simulation   string
	Time         uint64
	Frame        int
	IncomingPage uint64
	EvictedPage  uint64
	WasDirty     bool
}

// A SummaryEntry holds the final counters of a simulation as stored in the
// database.
type SummaryEntry struct {
	ID           string
	Simulation   string
	Policy       string
	NumFrames    int
	Accesses     uint64
	Misses       uint64
	Evictions    uint64
	WritesToDisk uint64
	CleanDrops   uint64
	MissRate     float64
}

// Names of the tables that NewDBTracer records into.
const (
	EvictionTable = "page_evictions"
	SummaryTable  = "page_summaries"
)

// A dbTracer is a hook that records what a paging simulation does into a
// database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that stores eviction events and final summaries.
// One tracer can be attached to several simulations.
func NewDBTracer(dataRecorder datarecording.DataRecorder) sim.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(EvictionTable, EvictionEntry{})
	t.dataRecorder.CreateTable(SummaryTable, SummaryEntry{})

	return t
}

func (t *dbTracer) Func(ctx sim.HookCtx) {
	s, ok := ctx.Domain.(*paging.Simulation)
	if !ok {
		return
	}

	switch ctx.Pos {
	case paging.HookPosEviction:
		t.eviction(s, ctx.Detail.(paging.EvictionEvent))
	case paging.HookPosDone:
		t.summary(s, ctx.Detail.(paging.Counters))
	}
}

func (t *dbTracer) eviction(s *paging.Simulation, e paging.EvictionEvent) {
	entry := EvictionEntry{
		ID:           sim.GetIDGenerator().Generate(),
		Simulation:   s.Name(),
		Time:         uint64(e.Time),
		Frame:        e.Frame,
		IncomingPage: uint64(e.IncomingPage),
		EvictedPage:  uint64(e.EvictedPage),
		WasDirty:     e.WasDirty,
	}

	t.dataRecorder.InsertData(EvictionTable, entry)
}

func (t *dbTracer) summary(s *paging.Simulation, c paging.Counters) {
	entry := SummaryEntry{
		ID:           sim.GetIDGenerator().Generate(),
		Simulation:   s.Name(),
		Policy:       s.Policy().String(),
		NumFrames:    s.NumFrames(),
		Accesses:     c.Accesses,
		Misses:       c.Misses,
		Evictions:    c.Evictions,
		WritesToDisk: c.WritesToDisk,
		CleanDrops:   c.CleanDrops,
		MissRate:     c.MissRate(),
	}

	t.dataRecorder.InsertData(SummaryTable, entry)
	t.dataRecorder.Flush()
}

package paging

import "github.com/sarchlab/pagesim/sim"

// Counters are the running totals of a simulation. They never decrease.
type Counters struct {
	Accesses      uint64
	Misses        uint64
	Evictions     uint64
	WritesToDisk  uint64
	CleanDrops    uint64
	FreeSlotLoads uint64
}

// Hits returns the number of accesses that found their page resident.
func (c Counters) Hits() uint64 {
	return c.Accesses - c.Misses
}

// MissRate returns misses over accesses, or 0 before the first access.
func (c Counters) MissRate() float64 {
	if c.Accesses == 0 {
		return 0
	}

	return float64(c.Misses) / float64(c.Accesses)
}

// An EvictionEvent describes a page leaving its frame for an incoming page.
type EvictionEvent struct {
	Time         sim.VTime
	Frame        int
	IncomingPage PageNumber
	EvictedPage  PageNumber
	WasDirty     bool
}

// Outcome tells how an access was served.
type Outcome int

// The outcomes of an access.
const (
	OutcomeHit Outcome = iota
	OutcomeMissFreeFrame
	OutcomeMissEviction
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMissFreeFrame:
		return "miss"
	case OutcomeMissEviction:
		return "miss+evict"
	default:
		return "unknown"
	}
}

// AccessResult is what happened to a single access.
type AccessResult struct {
	Outcome  Outcome
	Frame    int
	Eviction *EvictionEvent
}

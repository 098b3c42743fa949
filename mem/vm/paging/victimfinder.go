package paging

import (
	"math/rand"

	"github.com/sarchlab/pagesim/sim"
)

// A VictimFinder decides which frame should be evicted. It is only asked when
// every frame of the table holds a page.
type VictimFinder interface {
	FindVictim(table *FrameTable) (int, error)
}

func mustBeFull(table *FrameTable) error {
	if table.NumFrames() == 0 {
		return &InvariantError{Frame: -1, Reason: "no frame to evict"}
	}

	if !table.IsFull() {
		return &InvariantError{
			Frame:  -1,
			Reason: "eviction requested while a frame is free",
		}
	}

	return nil
}

// earliest returns the lowest-index frame with the smallest timestamp.
func earliest(
	table *FrameTable,
	timestamp func(f Frame) sim.VTime,
) (int, error) {
	victim := -1
	victimTime := sim.VTimeUndefined

	for i, f := range table.frames {
		t := timestamp(f)
		if !t.Defined() {
			return -1, &InvariantError{
				Frame:  i,
				Reason: "eviction candidate has no timestamp",
			}
		}

		if victim < 0 || t < victimTime {
			victim = i
			victimTime = t
		}
	}

	return victim, nil
}

// FIFOVictimFinder evicts the page that was loaded first.
type FIFOVictimFinder struct{}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the frame with the smallest load time.
func (e *FIFOVictimFinder) FindVictim(table *FrameTable) (int, error) {
	err := mustBeFull(table)
	if err != nil {
		return -1, err
	}

	return earliest(table, func(f Frame) sim.VTime { return f.LoadedAt })
}

// LRUVictimFinder evicts the least recently used page.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the frame with the smallest last access time.
func (e *LRUVictimFinder) FindVictim(table *FrameTable) (int, error) {
	err := mustBeFull(table)
	if err != nil {
		return -1, err
	}

	return earliest(table, func(f Frame) sim.VTime { return f.LastAccessedAt })
}

// ClockVictimFinder approximates LRU with the use bits. The hand stays where
// the last sweep left it.
type ClockVictimFinder struct {
	hand int
}

// NewClockVictimFinder returns a CLOCK victim finder with the hand at frame 0.
func NewClockVictimFinder() *ClockVictimFinder {
	return &ClockVictimFinder{}
}

// Hand returns the frame that the next sweep starts from.
func (e *ClockVictimFinder) Hand() int {
	return e.hand
}

// FindVictim clears use bits from the hand onwards until it finds a frame
// whose bit is already clear. If every bit was set, the frame where the sweep
// started is evicted. The hand ends one past the victim.
func (e *ClockVictimFinder) FindVictim(table *FrameTable) (int, error) {
	err := mustBeFull(table)
	if err != nil {
		return -1, err
	}

	n := table.NumFrames()
	start := e.hand % n

	for i := 0; i < n; i++ {
		index := (start + i) % n
		f := table.Frame(index)

		if !f.Used {
			e.hand = (index + 1) % n
			return index, nil
		}

		f.Used = false

		err = table.Update(f)
		if err != nil {
			return -1, err
		}
	}

	e.hand = (start + 1) % n

	return start, nil
}

// RandomVictimFinder evicts a uniformly chosen frame. Two finders created
// with the same seed choose the same sequence of frames.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a RANDOM victim finder seeded with seed.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	return &RandomVictimFinder{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// FindVictim returns a random frame index.
func (e *RandomVictimFinder) FindVictim(table *FrameTable) (int, error) {
	err := mustBeFull(table)
	if err != nil {
		return -1, err
	}

	return e.rng.Intn(table.NumFrames()), nil
}

// OPTVictimFinder stands in for Belady's optimal policy, which needs to see
// future accesses. It never picks a victim.
type OPTVictimFinder struct{}

// NewOPTVictimFinder returns the OPT stub.
func NewOPTVictimFinder() *OPTVictimFinder {
	return &OPTVictimFinder{}
}

// FindVictim always fails with ErrPolicyNotImplemented.
func (e *OPTVictimFinder) FindVictim(table *FrameTable) (int, error) {
	// TODO: pick the page whose next use is furthest away once the trace
	// reader can hand the simulation a lookahead window.
	return -1, ErrPolicyNotImplemented
}

// Package paging simulates page replacement over a fixed number of frames.
package paging

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/sim"
)

// HookPosAccess triggers after every access. The item is the Access and the
// detail is the AccessResult.
var HookPosAccess = &sim.HookPos{Name: "Access"}

// HookPosEviction triggers when a page is evicted, if the simulation is
// verbose. The detail is the EvictionEvent.
var HookPosEviction = &sim.HookPos{Name: "Eviction"}

// HookPosDone triggers once when the trace is exhausted. The detail is the
// final Counters.
var HookPosDone = &sim.HookPos{Name: "Done"}

// State is the phase of a simulation.
type State int

// The states of a simulation.
const (
	StateRunning State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "Done"
	}

	return "Running"
}

// A Simulation replays a memory trace against a frame table. It owns the
// table, the logical clock and the victim finder for the length of one run.
type Simulation struct {
	*sim.HookableBase

	name         string
	policy       Policy
	verbose      bool
	table        *FrameTable
	victimFinder VictimFinder
	clock        sim.LogicalClock
	counters     Counters
	state        State
}

var _ sim.TimeTeller = (*Simulation)(nil)

// Name returns the name of the simulation.
func (s *Simulation) Name() string {
	return s.name
}

// Policy returns the replacement policy in use.
func (s *Simulation) Policy() Policy {
	return s.policy
}

// NumFrames returns the number of frames of the simulated memory.
func (s *Simulation) NumFrames() int {
	return s.table.NumFrames()
}

// Verbose returns true if eviction events are reported.
func (s *Simulation) Verbose() bool {
	return s.verbose
}

// CurrentTime returns the number of accesses processed so far.
func (s *Simulation) CurrentTime() sim.VTime {
	return s.clock.CurrentTime()
}

// Counters returns the totals so far.
func (s *Simulation) Counters() Counters {
	return s.counters
}

// State returns whether the simulation still accepts accesses.
func (s *Simulation) State() State {
	return s.state
}

// Frames returns a copy of the frame table.
func (s *Simulation) Frames() []Frame {
	return s.table.Frames()
}

// Run feeds every access of the source to the simulation. When the source is
// exhausted, the done hooks are invoked and the final counters are returned.
// Any error stops the run; no counters are reported in that case.
func (s *Simulation) Run(source AccessSource) (Counters, error) {
	if s.state == StateDone {
		return Counters{}, ErrSimulationDone
	}

	for {
		a, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			s.state = StateDone
			return Counters{}, err
		}

		_, err = s.Access(a)
		if err != nil {
			return Counters{}, err
		}
	}

	return s.Finish(), nil
}

// Finish ends the simulation and reports the final counters to the hooks.
func (s *Simulation) Finish() Counters {
	if s.state == StateDone {
		return s.counters
	}

	s.state = StateDone

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosDone,
		Now:    s.clock.CurrentTime(),
		Detail: s.counters,
	})

	return s.counters
}

// Access processes a single access. A failed access ends the simulation.
func (s *Simulation) Access(a Access) (AccessResult, error) {
	if s.state == StateDone {
		return AccessResult{}, ErrSimulationDone
	}

	if a.Page == NoPage {
		s.state = StateDone
		return AccessResult{}, fmt.Errorf("%w: %#x", ErrReservedPage, uint64(a.Page))
	}

	now := s.clock.CurrentTime()

	var (
		result AccessResult
		err    error
	)

	if f, found := s.table.Lookup(a.Page); found {
		result, err = s.hit(f, a, now)
	} else if f, free := s.table.FirstFree(); free {
		result, err = s.loadIntoFreeFrame(f.Index, a, now)
	} else {
		result, err = s.evictAndLoad(a, now)
	}

	if err != nil {
		s.state = StateDone
		return AccessResult{}, err
	}

	s.counters.Accesses++
	s.clock.Tick()

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Now:    now,
		Item:   a,
		Detail: result,
	})

	return result, nil
}

func (s *Simulation) hit(f Frame, a Access, now sim.VTime) (AccessResult, error) {
	f.LastAccessedAt = now
	f.Used = true

	if a.IsWrite() {
		f.Dirty = true
	}

	err := s.table.Update(f)
	if err != nil {
		return AccessResult{}, err
	}

	return AccessResult{Outcome: OutcomeHit, Frame: f.Index}, nil
}

func (s *Simulation) load(index int, a Access, now sim.VTime) error {
	return s.table.Update(Frame{
		Index:          index,
		Page:           a.Page,
		Valid:          true,
		Dirty:          a.IsWrite(),
		Used:           true,
		LoadedAt:       now,
		LastAccessedAt: now,
	})
}

func (s *Simulation) loadIntoFreeFrame(
	index int,
	a Access,
	now sim.VTime,
) (AccessResult, error) {
	err := s.load(index, a, now)
	if err != nil {
		return AccessResult{}, err
	}

	s.counters.Misses++
	s.counters.FreeSlotLoads++

	return AccessResult{Outcome: OutcomeMissFreeFrame, Frame: index}, nil
}

func (s *Simulation) evictAndLoad(a Access, now sim.VTime) (AccessResult, error) {
	victim, err := s.victimFinder.FindVictim(s.table)
	if err != nil {
		return AccessResult{}, fmt.Errorf("%s: %w", s.policy, err)
	}

	if victim < 0 || victim >= s.table.NumFrames() {
		return AccessResult{}, &InvariantError{
			Frame:  victim,
			Reason: "victim index out of range",
		}
	}

	evicted := s.table.Frame(victim)
	if !evicted.Valid {
		return AccessResult{}, &InvariantError{
			Frame:  victim,
			Reason: "victim frame holds no page",
		}
	}

	event := EvictionEvent{
		Time:         now,
		Frame:        victim,
		IncomingPage: a.Page,
		EvictedPage:  evicted.Page,
		WasDirty:     evicted.Dirty,
	}

	err = s.load(victim, a, now)
	if err != nil {
		return AccessResult{}, err
	}

	s.counters.Misses++
	s.counters.Evictions++

	if event.WasDirty {
		s.counters.WritesToDisk++
	} else {
		s.counters.CleanDrops++
	}

	if s.verbose {
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosEviction,
			Now:    now,
			Item:   a,
			Detail: event,
		})
	}

	return AccessResult{
		Outcome:  OutcomeMissEviction,
		Frame:    victim,
		Eviction: &event,
	}, nil
}

package paging

import (
	"math"

	"github.com/sarchlab/pagesim/sim"
)

// PageNumber is a virtual page number.
type PageNumber uint64

// NoPage is the resident page of an empty frame.
const NoPage PageNumber = math.MaxUint64

// A Frame is a physical slot that can hold one virtual page.
type Frame struct {
	Index          int
	Page           PageNumber
	Valid          bool
	Dirty          bool
	Used           bool
	LoadedAt       sim.VTime
	LastAccessedAt sim.VTime
}

func emptyFrame(index int) Frame {
	return Frame{
		Index:          index,
		Page:           NoPage,
		LoadedAt:       sim.VTimeUndefined,
		LastAccessedAt: sim.VTimeUndefined,
	}
}

func (f Frame) check() error {
	if f.Valid != (f.Page != NoPage) {
		return &InvariantError{
			Frame:  f.Index,
			Reason: "valid bit disagrees with resident page",
		}
	}

	if !f.Valid {
		return nil
	}

	if !f.LoadedAt.Defined() {
		return &InvariantError{
			Frame:  f.Index,
			Reason: "resident page has no load time",
		}
	}

	if !f.LastAccessedAt.Defined() {
		return &InvariantError{
			Frame:  f.Index,
			Reason: "resident page has no access time",
		}
	}

	return nil
}

// A FrameTable is a fixed number of frames. Frame i always sits at index i.
type FrameTable struct {
	frames   []Frame
	numValid int
}

// NewFrameTable creates a table with all the frames empty.
func NewFrameTable(numFrames int) *FrameTable {
	t := &FrameTable{}
	t.frames = make([]Frame, numFrames)
	t.Reset()

	return t
}

// Reset empties all the frames.
func (t *FrameTable) Reset() {
	for i := range t.frames {
		t.frames[i] = emptyFrame(i)
	}

	t.numValid = 0
}

// NumFrames returns the capacity of the table.
func (t *FrameTable) NumFrames() int {
	return len(t.frames)
}

// NumValid returns the number of frames that hold a page.
func (t *FrameTable) NumValid() int {
	return t.numValid
}

// IsFull returns true if no frame is empty.
func (t *FrameTable) IsFull() bool {
	return t.numValid == len(t.frames)
}

// Frame returns a copy of the frame at the given index.
func (t *FrameTable) Frame(index int) Frame {
	return t.frames[index]
}

// Frames returns a copy of all the frames.
func (t *FrameTable) Frames() []Frame {
	frames := make([]Frame, len(t.frames))
	copy(frames, t.frames)

	return frames
}

// Lookup finds the frame that holds the page.
func (t *FrameTable) Lookup(page PageNumber) (Frame, bool) {
	for _, f := range t.frames {
		if f.Valid && f.Page == page {
			return f, true
		}
	}

	return Frame{}, false
}

// FirstFree returns the empty frame with the lowest index.
func (t *FrameTable) FirstFree() (Frame, bool) {
	if t.IsFull() {
		return Frame{}, false
	}

	for _, f := range t.frames {
		if !f.Valid {
			return f, true
		}
	}

	return Frame{}, false
}

// Update replaces the frame at f.Index. A resident frame can only be replaced
// by another resident frame.
func (t *FrameTable) Update(f Frame) error {
	if f.Index < 0 || f.Index >= len(t.frames) {
		return &InvariantError{Frame: f.Index, Reason: "frame index out of range"}
	}

	err := f.check()
	if err != nil {
		return err
	}

	old := t.frames[f.Index]
	if old.Valid && !f.Valid {
		return &InvariantError{
			Frame:  f.Index,
			Reason: "resident frame cannot be cleared",
		}
	}

	if !old.Valid && f.Valid {
		t.numValid++
	}

	t.frames[f.Index] = f

	return nil
}

// Check verifies every frame in the table.
func (t *FrameTable) Check() error {
	numValid := 0

	for i, f := range t.frames {
		if f.Index != i {
			return &InvariantError{Frame: i, Reason: "frame moved from its slot"}
		}

		err := f.check()
		if err != nil {
			return err
		}

		if f.Valid {
			numValid++
		}
	}

	if numValid != t.numValid {
		return &InvariantError{Frame: -1, Reason: "resident frame count is stale"}
	}

	return nil
}

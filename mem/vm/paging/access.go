package paging

import (
	"fmt"
	"io"
)

// AccessKind tells reads from writes.
type AccessKind int

// The kinds of access.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "R"
	case AccessWrite:
		return "W"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// An Access is one entry of a memory trace.
type Access struct {
	Page PageNumber
	Kind AccessKind
}

// MakeRead returns a read of the page.
func MakeRead(page PageNumber) Access {
	return Access{Page: page, Kind: AccessRead}
}

// MakeWrite returns a write to the page.
func MakeWrite(page PageNumber) Access {
	return Access{Page: page, Kind: AccessWrite}
}

// IsWrite returns true if the access modifies the page.
func (a Access) IsWrite() bool {
	return a.Kind == AccessWrite
}

func (a Access) String() string {
	return fmt.Sprintf("%s 0x%05x", a.Kind, uint64(a.Page))
}

// An AccessSource produces accesses in trace order. Next returns io.EOF when
// the trace is exhausted.
type AccessSource interface {
	Next() (Access, error)
}

type sliceSource struct {
	accesses []Access
	next     int
}

// NewSliceSource returns an AccessSource that replays the given accesses.
func NewSliceSource(accesses ...Access) AccessSource {
	return &sliceSource{accesses: accesses}
}

func (s *sliceSource) Next() (Access, error) {
	if s.next >= len(s.accesses) {
		return Access{}, io.EOF
	}

	a := s.accesses[s.next]
	s.next++

	return a, nil
}

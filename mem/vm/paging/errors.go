package paging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation is wrapped by every InvariantError. It means the
	// bookkeeping of the simulation is corrupt and the run must stop.
	ErrInvariantViolation = errors.New("frame table invariant violated")

	// ErrPolicyNotImplemented is returned by victim finders that cannot pick
	// a victim, such as the OPT stub.
	ErrPolicyNotImplemented = errors.New("replacement policy not implemented")

	// ErrReservedPage is returned for an access to NoPage, the page number
	// that marks empty frames.
	ErrReservedPage = errors.New("page number is reserved for empty frames")

	// ErrSimulationDone is returned when accesses are fed to a simulation
	// that has already finished or failed.
	ErrSimulationDone = errors.New("simulation is done")
)

// An InvariantError reports a frame that is in a state the simulation can
// never legally produce.
type InvariantError struct {
	// Frame is the index of the offending frame, or -1 if the fault concerns
	// the whole table.
	Frame  int
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Frame < 0 {
		return "paging: invariant violated: " + e.Reason
	}

	return fmt.Sprintf("paging: invariant violated at frame %d: %s",
		e.Frame, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvariantViolation).
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

package paging

import (
	"fmt"

	"github.com/sarchlab/pagesim/sim"
)

// A Builder can build simulations.
type Builder struct {
	numFrames    int
	policy       Policy
	seed         int64
	verbose      bool
	victimFinder VictimFinder
}

// MakeBuilder returns a Builder with 16 frames and the FIFO policy.
func MakeBuilder() Builder {
	return Builder{
		numFrames: 16,
		policy:    PolicyFIFO,
	}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(numFrames int) Builder {
	b.numFrames = numFrames
	return b
}

// WithPolicy sets the replacement policy.
func (b Builder) WithPolicy(policy Policy) Builder {
	b.policy = policy
	return b
}

// WithSeed sets the seed of the RANDOM policy.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithVerbose enables the eviction hooks.
func (b Builder) WithVerbose(verbose bool) Builder {
	b.verbose = verbose
	return b
}

// WithVictimFinder replaces the victim finder that the policy would create.
// The policy is still reported as the policy of the simulation.
func (b Builder) WithVictimFinder(victimFinder VictimFinder) Builder {
	b.victimFinder = victimFinder
	return b
}

// Build creates a simulation with all the frames empty.
func (b Builder) Build(name string) (*Simulation, error) {
	if b.numFrames < 1 {
		return nil, fmt.Errorf(
			"paging: %s needs at least one frame, got %d", name, b.numFrames)
	}

	if !b.policy.valid() {
		return nil, fmt.Errorf("paging: %s has unknown policy %d",
			name, int(b.policy))
	}

	victimFinder := b.victimFinder
	if victimFinder == nil {
		victimFinder = b.policy.NewVictimFinder(b.seed)
	}

	s := &Simulation{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		policy:       b.policy,
		verbose:      b.verbose,
		table:        NewFrameTable(b.numFrames),
		victimFinder: victimFinder,
		state:        StateRunning,
	}

	return s, nil
}

package paging

import (
	"fmt"
	"log"
	"strings"
)

// Policy names a page replacement policy.
type Policy int

// The policies, in the order the command line lists them.
const (
	PolicyOPT Policy = iota
	PolicyFIFO
	PolicyCLOCK
	PolicyLRU
	PolicyRANDOM
)

var policyNames = []string{"OPT", "FIFO", "CLOCK", "LRU", "RANDOM"}

// Policies returns all the policies.
func Policies() []Policy {
	return []Policy{PolicyOPT, PolicyFIFO, PolicyCLOCK, PolicyLRU, PolicyRANDOM}
}

// ParsePolicy converts a policy name, in any case, into a Policy.
func ParsePolicy(name string) (Policy, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range policyNames {
		if n == upper {
			return Policy(i), nil
		}
	}

	return 0, fmt.Errorf("unknown replacement policy %q, want one of %s",
		name, strings.Join(policyNames, ", "))
}

func (p Policy) valid() bool {
	return p >= PolicyOPT && p <= PolicyRANDOM
}

func (p Policy) String() string {
	if !p.valid() {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return policyNames[p]
}

// NewVictimFinder creates the victim finder that implements the policy. The
// seed is only used by RANDOM.
func (p Policy) NewVictimFinder(seed int64) VictimFinder {
	switch p {
	case PolicyOPT:
		return NewOPTVictimFinder()
	case PolicyFIFO:
		return NewFIFOVictimFinder()
	case PolicyCLOCK:
		return NewClockVictimFinder()
	case PolicyLRU:
		return NewLRUVictimFinder()
	case PolicyRANDOM:
		return NewRandomVictimFinder(seed)
	default:
		log.Panicf("unknown policy %d", int(p))
	}

	return nil
}

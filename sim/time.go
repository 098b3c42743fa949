package sim

import "math"

// VTime is a logical timestamp. It counts the accesses that a simulation has
// processed before the current one, so the first access happens at 0.
type VTime uint64

// VTimeUndefined marks a timestamp that has never been set.
const VTimeUndefined VTime = math.MaxUint64

// Defined returns true if the timestamp has been set.
func (t VTime) Defined() bool {
	return t != VTimeUndefined
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// A LogicalClock is a TimeTeller that only moves forward when it is told to.
type LogicalClock struct {
	now VTime
}

// CurrentTime returns the time of the access being processed.
func (c *LogicalClock) CurrentTime() VTime {
	return c.now
}

// Tick moves the clock to the next access.
func (c *LogicalClock) Tick() {
	c.now++
}

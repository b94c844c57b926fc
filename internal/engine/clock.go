package engine

import (
	"sync"

	"github.com/xldenis/prusti-dev/internal/mir"
)

// Clock stamps finished procedures with their logical completion order.
// Stamps start after the clock's base and increase strictly across workers.
// Results are ordered by stamp, NEVER by wall-clock time.
type Clock struct {
	mu      sync.Mutex
	base    int64
	stamped []mir.DefID
}

// NewClock returns a clock whose first stamp is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first stamp is base+1.
func NewClockAt(base int64) *Clock {
	return &Clock{base: base}
}

// Stamp records that def finished and returns its seq.
func (c *Clock) Stamp(def mir.DefID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stamped = append(c.stamped, def)
	return c.base + int64(len(c.stamped))
}

// Current returns the last seq handed out, or the base before any stamp.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base + int64(len(c.stamped))
}

// Stamped lists the procedures in the order they were stamped.
func (c *Clock) Stamped() []mir.DefID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mir.DefID(nil), c.stamped...)
}

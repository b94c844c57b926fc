package testutil

import (
	"sync"

	"github.com/xldenis/prusti-dev/internal/mir"
)

// OrderedClock stamps each procedure with its position in a fixed order, so
// seq numbers do not depend on how workers interleave. A procedure outside
// the order, or stamped a second time, gets the next seq after the order.
type OrderedClock struct {
	mu    sync.Mutex
	pos   map[mir.DefID]int64
	extra int64
}

// NewOrderedClock creates a clock stamping defs[i] with i+1.
func NewOrderedClock(defs ...mir.DefID) *OrderedClock {
	pos := make(map[mir.DefID]int64, len(defs))
	for _, def := range defs {
		if _, dup := pos[def]; !dup {
			pos[def] = int64(len(pos) + 1)
		}
	}
	return &OrderedClock{pos: pos, extra: int64(len(pos))}
}

// Stamp returns the seq of def.
func (c *OrderedClock) Stamp(def mir.DefID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq, ok := c.pos[def]; ok {
		delete(c.pos, def)
		return seq
	}
	c.extra++
	return c.extra
}

package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xldenis/prusti-dev/internal/mir"
)

func TestOrderedClock_StampsByPosition(t *testing.T) {
	clock := NewOrderedClock("a", "b", "a", "c")
	assert.Equal(t, int64(3), clock.Stamp("c"))
	assert.Equal(t, int64(1), clock.Stamp("a"))
	assert.Equal(t, int64(4), clock.Stamp("z"), "unknown procedures follow the order")
	assert.Equal(t, int64(5), clock.Stamp("a"), "a second stamp is not reused")
	assert.Equal(t, int64(2), clock.Stamp("b"))
}

func TestOrderedClock_IndependentOfInterleaving(t *testing.T) {
	defs := []mir.DefID{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	clock := NewOrderedClock(defs...)

	var mu sync.Mutex
	got := make(map[mir.DefID]int64)
	var wg sync.WaitGroup
	for i := len(defs) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(def mir.DefID) {
			defer wg.Done()
			seq := clock.Stamp(def)
			mu.Lock()
			got[def] = seq
			mu.Unlock()
		}(defs[i])
	}
	wg.Wait()

	for i, def := range defs {
		assert.Equal(t, int64(i+1), got[def], def)
	}
}

func TestFixedRunID(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedRunID("run-1").Generate())
	assert.Equal(t, "test-run", NewFixedRunID("").Generate())
}

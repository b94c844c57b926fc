package taskenc

import (
	"fmt"
	"sync"
)

// Registry coordinates the caches of one encoding session. All caches
// created from the same registry share one lock, one wake-up condition and
// one waits-for graph, so cycles that cross caches are detected.
type Registry struct {
	mu       sync.Mutex
	cond     *sync.Cond
	nextPath uint64
	waitsFor map[uint64]waitEdge // keyed by the waiting path
}

type waitEdge struct {
	owner uint64
	task  TaskID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{waitsFor: make(map[uint64]waitEdge)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Deps is one logical dependency path. It is not safe for concurrent use.
type Deps struct {
	reg   *Registry
	id    uint64
	stack []TaskID
}

// NewDeps starts a new logical path, typically one per worker goroutine.
func (r *Registry) NewDeps() *Deps {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPath++
	return &Deps{reg: r, id: r.nextPath}
}

// Path returns the tasks currently being computed on this path, outermost
// first.
func (d *Deps) Path() []TaskID {
	d.reg.mu.Lock()
	defer d.reg.mu.Unlock()
	return append([]TaskID(nil), d.stack...)
}

type taskState int

const (
	statePending taskState = iota
	stateDone
)

type entry[R, F any] struct {
	state  taskState
	owner  uint64
	hasRef bool
	ref    R
	full   F
	err    error
}

// EncodeFunc computes the full output of key. It must call EmitRef for key
// (with the same deps) before requesting anything that may depend on key's
// reference.
type EncodeFunc[K comparable, R, F any] func(deps *Deps, key K) (F, error)

// Cache memoizes one encoder's tasks.
type Cache[K comparable, R, F any] struct {
	name    string
	reg     *Registry
	encode  EncodeFunc[K, R, F]
	entries map[K]*entry[R, F] // guarded by reg.mu
	order   []K                // successful completions, guarded by reg.mu
}

// NewCache creates a cache named name whose tasks are computed by encode.
func NewCache[K comparable, R, F any](reg *Registry, name string, encode EncodeFunc[K, R, F]) *Cache[K, R, F] {
	return &Cache[K, R, F]{
		name:    name,
		reg:     reg,
		encode:  encode,
		entries: make(map[K]*entry[R, F]),
	}
}

// Name returns the encoder name used in task IDs.
func (c *Cache[K, R, F]) Name() string { return c.name }

func (c *Cache[K, R, F]) id(key K) TaskID {
	return TaskID{Encoder: c.name, Key: fmt.Sprint(key)}
}

// RequireRef returns the reference output of key, computing the task if it
// has not been started.
func (c *Cache[K, R, F]) RequireRef(deps *Deps, key K) (R, error) {
	var zero R
	e := c.acquire(deps, key)
	defer c.reg.mu.Unlock()
	for {
		if e.hasRef {
			return e.ref, nil
		}
		if e.state == stateDone {
			if e.err != nil {
				return zero, e.err
			}
			return zero, protocolError(c.id(key), "task completed without emitting a reference")
		}
		if err := c.await(deps, key, e); err != nil {
			return zero, err
		}
	}
}

// RequireFull returns the full output of key, computing the task if it has
// not been started.
func (c *Cache[K, R, F]) RequireFull(deps *Deps, key K) (F, error) {
	var zero F
	e := c.acquire(deps, key)
	defer c.reg.mu.Unlock()
	for {
		if e.state == stateDone {
			if e.err != nil {
				return zero, e.err
			}
			return e.full, nil
		}
		if err := c.await(deps, key, e); err != nil {
			return zero, err
		}
	}
}

// EmitRef publishes the reference output of key. It may only be called once,
// by the computation of key itself, before that computation returns.
func (c *Cache[K, R, F]) EmitRef(deps *Deps, key K, ref R) error {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	id := c.id(key)
	e, ok := c.entries[key]
	switch {
	case !ok:
		return protocolError(id, "reference emitted for a task that was never started")
	case e.state == stateDone:
		return protocolError(id, "reference emitted after the task completed")
	case e.owner != deps.id || len(deps.stack) == 0 || deps.stack[len(deps.stack)-1] != id:
		return protocolError(id, "reference emitted outside the task's own computation")
	case e.hasRef:
		return protocolError(id, "reference emitted twice")
	}
	e.ref = ref
	e.hasRef = true
	c.reg.cond.Broadcast()
	return nil
}

// Lookup returns the full output of key if it completed successfully.
func (c *Cache[K, R, F]) Lookup(key K) (F, bool) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.state != stateDone || e.err != nil {
		var zero F
		return zero, false
	}
	return e.full, true
}

// Completed returns the keys of successfully completed tasks in completion
// order.
func (c *Cache[K, R, F]) Completed() []K {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	return append([]K(nil), c.order...)
}

// acquire returns key's entry with the registry lock held, running the task
// first (unlocked) if this is the first request for key.
func (c *Cache[K, R, F]) acquire(deps *Deps, key K) *entry[R, F] {
	c.reg.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		return e
	}
	e = &entry[R, F]{owner: deps.id}
	c.entries[key] = e
	deps.stack = append(deps.stack, c.id(key))
	c.reg.mu.Unlock()

	c.run(deps, key, e)

	c.reg.mu.Lock()
	return e
}

func (c *Cache[K, R, F]) run(deps *Deps, key K, e *entry[R, F]) {
	finished := false
	defer func() {
		if finished {
			return
		}
		c.finish(deps, key, e, *new(F), fmt.Errorf("%s: encoder panicked", c.id(key)))
	}()
	full, err := c.encode(deps, key)
	c.finish(deps, key, e, full, err)
	finished = true
}

func (c *Cache[K, R, F]) finish(deps *Deps, key K, e *entry[R, F], full F, err error) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	e.state = stateDone
	e.full = full
	e.err = err
	if err == nil {
		c.order = append(c.order, key)
	}
	deps.stack = deps.stack[:len(deps.stack)-1]
	c.reg.cond.Broadcast()
}

// await blocks until some task publishes an output. It fails instead when
// waiting would never end. Called with the registry lock held.
func (c *Cache[K, R, F]) await(deps *Deps, key K, e *entry[R, F]) error {
	id := c.id(key)
	chain := append(append([]TaskID(nil), deps.stack...), id)
	if e.owner == deps.id {
		return &CycleError{Chain: chain}
	}
	for p := e.owner; ; {
		if p == deps.id {
			return &CycleError{Chain: chain, CrossPath: true}
		}
		w, waiting := c.reg.waitsFor[p]
		if !waiting {
			break
		}
		chain = append(chain, w.task)
		p = w.owner
	}
	c.reg.waitsFor[deps.id] = waitEdge{owner: e.owner, task: id}
	c.reg.cond.Wait()
	delete(c.reg.waitsFor, deps.id)
	return nil
}

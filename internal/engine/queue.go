package engine

import (
	"context"
	"sync"

	"github.com/xldenis/prusti-dev/internal/mir"
)

// workQueue is a thread-safe FIFO of procedures waiting for a worker.
//
// Waiting is channel based so that workers can select on their context and
// stop picking up work as soon as the run is cancelled.
type workQueue struct {
	mu     sync.Mutex
	defs   []mir.DefID
	closed bool
	signal chan struct{} // buffered, size 1
}

func newWorkQueue() *workQueue {
	return &workQueue{signal: make(chan struct{}, 1)}
}

// Enqueue adds defs to the back of the queue. Returns false if the queue is
// closed.
func (q *workQueue) Enqueue(defs ...mir.DefID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.defs = append(q.defs, defs...)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue removes the front def without blocking. closed reports whether
// the queue is closed, so that an empty closed queue can be told apart from
// one that is merely drained for now.
func (q *workQueue) tryDequeue() (def mir.DefID, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.defs) == 0 {
		return "", false, q.closed
	}
	def = q.defs[0]
	q.defs = q.defs[1:]
	return def, true, q.closed
}

// Next blocks until a def is available. It returns false once the queue is
// closed and empty, or as soon as ctx is done: a cancelled run dispatches
// nothing further even if work remains.
func (q *workQueue) Next(ctx context.Context) (mir.DefID, bool) {
	for {
		if ctx.Err() != nil {
			return "", false
		}
		def, ok, closed := q.tryDequeue()
		if ok {
			return def, true
		}
		if closed {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-q.signal:
		}
	}
}

// Len returns the number of procedures not yet dispatched.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.defs)
}

// Close signals that no more work will be enqueued and wakes every waiter.
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

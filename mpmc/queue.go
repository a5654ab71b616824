package mpmc

import (
	"sync/atomic"

	"fenrir/reclaim"
)

type cell[T any] struct {
	// seq == pos:   free, a producer may claim it
	// seq == pos+1: committed, a consumer may take it
	seq atomic.Uint64
	val T
}

// Queue is a fixed-capacity lock-free MPMC ring buffer.
type Queue[T any] struct {
	// producer and consumer cursors on separate cache lines
	enqueuePos atomic.Uint64
	_pad1      [56]byte
	dequeuePos atomic.Uint64
	_pad2      [56]byte

	cells []cell[T]
	mask  uint64
}

// New allocates a queue. Capacity must be a power of two; the mask
// replaces modulo indexing.
func New[T any](capacity uint64) *Queue[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("mpmc: capacity must be power of two")
	}
	q := &Queue[T]{
		cells: make([]cell[T], capacity),
		mask:  capacity - 1,
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

// TryPush appends v. Returns false immediately if the queue is full.
func (q *Queue[T]) TryPush(v T) bool {
	var bo reclaim.Backoff
	pos := q.enqueuePos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			// cell free, claim it
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.enqueuePos.Load()
			bo.Once()
		case diff < 0:
			return false // full
		default:
			// another producer raced ahead
			pos = q.enqueuePos.Load()
		}
	}
}

// TryPop removes the oldest value. Returns false immediately if the
// queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var bo reclaim.Backoff
	pos := q.dequeuePos.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				v := c.val
				var zero T
				c.val = zero
				// free the cell for the next wrap-around
				c.seq.Store(pos + q.mask + 1)
				return v, true
			}
			pos = q.dequeuePos.Load()
			bo.Once()
		case diff < 0:
			var zero T
			return zero, false // empty
		default:
			pos = q.dequeuePos.Load()
		}
	}
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	return len(q.cells)
}

// Len reports the current occupancy. Purely advisory under
// concurrency.
func (q *Queue[T]) Len() int {
	e := q.enqueuePos.Load()
	d := q.dequeuePos.Load()
	if e < d {
		return 0
	}
	return int(e - d)
}

// IsEmpty reports whether the queue is empty.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

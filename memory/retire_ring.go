package memory

import (
	"fmt"
	"sync/atomic"
)

// RetireRing is a lock-free SPSC ring buffer for retired objects
// (writer → reclaimer). Exactly one goroutine may Enqueue and exactly
// one may Dequeue; head is written only by the producer, tail only by
// the consumer.
type RetireRing struct {
	// head/tail on separate cache lines
	head  uint64
	_pad1 [56]byte
	tail  uint64
	_pad2 [56]byte

	buf  []any
	mask uint64
}

// NewRetireRing allocates a fixed-size circular buffer.
// Size must be a power of two.
func NewRetireRing(size uint64) *RetireRing {
	if size == 0 || size&(size-1) != 0 {
		panic("memory: RetireRing size must be power of two")
	}
	return &RetireRing{
		buf:  make([]any, size),
		mask: size - 1,
	}
}

// Enqueue pushes a retired object into the ring.
// Returns false if the buffer is full.
func (r *RetireRing) Enqueue(v any) bool {
	h := r.head
	t := atomic.LoadUint64(&r.tail)
	if h-t == uint64(len(r.buf)) {
		return false // full
	}
	r.buf[h&r.mask] = v
	atomic.StoreUint64(&r.head, h+1)
	return true
}

// Dequeue pops the oldest retired object from the ring.
// Returns nil if the buffer is empty.
func (r *RetireRing) Dequeue() any {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return nil
	}
	v := r.buf[t&r.mask]
	r.buf[t&r.mask] = nil
	atomic.StoreUint64(&r.tail, t+1)
	return v
}

// ---------------- Optional Diagnostics ---------------- //

// Len returns the number of objects currently stored.
func (r *RetireRing) Len() int {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return int(h - t)
}

// Cap returns the total capacity of the ring.
func (r *RetireRing) Cap() int {
	return len(r.buf)
}

// IsFull reports whether the ring is full.
func (r *RetireRing) IsFull() bool {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return h-t == uint64(len(r.buf))
}

// IsEmpty reports whether the ring is empty.
func (r *RetireRing) IsEmpty() bool {
	return atomic.LoadUint64(&r.head) == atomic.LoadUint64(&r.tail)
}

// Dump prints a short summary for debugging / monitoring.
func (r *RetireRing) Dump() {
	fmt.Printf("RetireRing{len=%d, cap=%d, head=%d, tail=%d}\n",
		r.Len(), r.Cap(), atomic.LoadUint64(&r.head), atomic.LoadUint64(&r.tail))
}

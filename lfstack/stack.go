package lfstack

import (
	"sync/atomic"
	"unsafe"

	"fenrir/memory"
	"fenrir/reclaim"
)

type node[T any] struct {
	val T
	// written only before publish, read only under guard protection
	next *node[T]
}

// Stack is a lock-free LIFO. Nodes are drawn from an internal pool and
// recycled through the configured reclamation domain.
type Stack[T any] struct {
	head atomic.Pointer[node[T]]
	size atomic.Int64

	pool *memory.Pool[node[T]]
	free reclaim.Deleter
}

// New creates an empty stack.
func New[T any]() *Stack[T] {
	s := &Stack[T]{
		pool: memory.NewPool(func() *node[T] { return &node[T]{} }),
	}
	s.free = s.recycle
	return s
}

// Push adds v to the top of the stack. It never blocks and needs no
// guard: push publishes a node but dereferences nothing shared.
func (s *Stack[T]) Push(v T) {
	n := s.pool.Get()
	n.val = v
	var bo reclaim.Backoff
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			s.size.Add(1)
			return
		}
		bo.Once()
	}
}

// Pop removes and returns the top value, or false if the stack is
// empty. The guard must belong to the stack's reclamation domain;
// Pop follows protect → validate → use before touching node memory,
// then retires the unlinked node through the guard.
func (s *Stack[T]) Pop(g reclaim.Guard) (T, bool) {
	var zero T
	var bo reclaim.Backoff
	for {
		n := s.head.Load()
		if n == nil {
			g.Clear()
			return zero, false
		}
		g.Protect(unsafe.Pointer(n))
		if s.head.Load() != n {
			// head moved between read and protect; n may
			// already be retired
			continue
		}
		next := n.next
		if s.head.CompareAndSwap(n, next) {
			val := n.val
			g.Clear()
			g.Retire(unsafe.Pointer(n), s.free)
			s.size.Add(-1)
			return val, true
		}
		bo.Once()
	}
}

// Len reports the current size. Purely advisory under concurrency.
func (s *Stack[T]) Len() int {
	return int(s.size.Load())
}

// recycle is the deleter installed on every retired node.
func (s *Stack[T]) recycle(p unsafe.Pointer) {
	n := (*node[T])(p)
	var zero T
	n.val = zero
	n.next = nil
	s.pool.Put(n)
}

package epoch

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"fenrir/reclaim"
)

// ErrTooManyThreads is returned when Register exceeds MaxThreads. This
// is a configuration error, not a transient condition.
var ErrTooManyThreads = errors.New("epoch: thread slots exhausted, MaxThreads exceeded")

const (
	// generations in flight: current, previous, and the one being
	// freed
	generations = 3

	DefaultMaxThreads = 64
)

// Config sizes a Domain. Zero values take the defaults.
type Config struct {
	// MaxThreads bounds the number of registered threads.
	MaxThreads int
}

type retired struct {
	ptr  unsafe.Pointer
	free reclaim.Deleter
	next *retired
}

// threadState is single-writer (the owning thread) for active/local,
// multi-reader for the advance scan. Buckets are CAS lists so the
// advance winner can detach a stale generation from any thread.
type threadState struct {
	active  atomic.Bool
	local   atomic.Uint64
	buckets [generations]atomic.Pointer[retired]
	_pad    [24]byte
}

// Domain is an explicit EBR instance; there is no process-wide
// singleton. Structures configured with the same Domain may safely
// pop each other's nodes.
type Domain struct {
	global   atomic.Uint64
	threads  []threadState
	nthreads atomic.Int64

	// serializes advance+drain: the generation index cycles mod 3,
	// so a drain left behind by a stalled advancer must never run
	// concurrently with later advances refilling the same index
	advancing atomic.Bool

	statRetired  atomic.Uint64
	statFreed    atomic.Uint64
	statAdvances atomic.Uint64
}

// New creates an epoch-based reclamation domain.
func New(cfg Config) *Domain {
	if cfg.MaxThreads <= 0 {
		cfg.MaxThreads = DefaultMaxThreads
	}
	return &Domain{threads: make([]threadState, cfg.MaxThreads)}
}

// Register claims a thread slot. Each participating goroutine
// registers once and keeps its Thread for its lifetime.
func (d *Domain) Register() (*Thread, error) {
	for {
		n := d.nthreads.Load()
		if n >= int64(len(d.threads)) {
			return nil, ErrTooManyThreads
		}
		if d.nthreads.CompareAndSwap(n, n+1) {
			t := &Thread{d: d, id: int(n)}
			t.guard.t = t
			return t, nil
		}
	}
}

// Retire files an unlinked object under the current epoch on behalf
// of t. The thread must be pinned.
func (d *Domain) Retire(t *Thread, p unsafe.Pointer, free reclaim.Deleter) {
	d.retire(t.id, p, free)
}

// retire files p under the current global epoch in the thread's own
// bucket. Must be called while the thread is pinned; that is what
// bounds how far the global epoch can run ahead of the record.
func (d *Domain) retire(tid int, p unsafe.Pointer, free reclaim.Deleter) {
	e := d.global.Load()
	b := &d.threads[tid].buckets[e%generations]
	r := &retired{ptr: p, free: free}
	for {
		old := b.Load()
		r.next = old
		if b.CompareAndSwap(old, r) {
			break
		}
	}
	d.statRetired.Add(1)
}

// TryAdvance advances the global epoch if every pinned thread has
// observed it, then frees everything retired in the generation that is
// now two steps stale. Returns the number freed (0 if a thread lags or
// another advancer won the race).
func (d *Domain) TryAdvance() int {
	if !d.advancing.CompareAndSwap(false, true) {
		return 0 // another advance in flight
	}
	defer d.advancing.Store(false)

	cur := d.global.Load()
	n := int(d.nthreads.Load())

	for i := 0; i < n; i++ {
		st := &d.threads[i]
		if st.active.Load() && st.local.Load() != cur {
			return 0 // a pinned thread is still in an old epoch
		}
	}

	d.global.Store(cur + 1)
	d.statAdvances.Add(1)

	// (new-2) mod 3 == (new+1) mod 3
	stale := (cur + 2) % generations
	freed := 0
	for i := 0; i < n; i++ {
		for r := d.threads[i].buckets[stale].Swap(nil); r != nil; r = r.next {
			r.free(r.ptr)
			freed++
		}
	}
	d.statFreed.Add(uint64(freed))
	return freed
}

// Epoch returns the current global epoch.
func (d *Domain) Epoch() uint64 {
	return d.global.Load()
}

// Stats are monotonic counters, maintained with relaxed-style atomics.
type Stats struct {
	Retired  uint64
	Freed    uint64
	Advances uint64
}

func (d *Domain) Stats() Stats {
	return Stats{
		Retired:  d.statRetired.Load(),
		Freed:    d.statFreed.Load(),
		Advances: d.statAdvances.Load(),
	}
}

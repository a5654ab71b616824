package rcu

import (
	"sync/atomic"

	"fenrir/memory"
)

const inactive = ^uint64(0)

// Domain holds the epoch counter for one writer/reader group. State is
// explicit rather than a package global so independent groups never
// interfere.
type Domain struct {
	epoch atomic.Uint64
}

func NewDomain() *Domain {
	return &Domain{}
}

// Epoch returns the current epoch.
func (d *Domain) Epoch() uint64 {
	return d.epoch.Load()
}

// Reader marks when a reader entered a read section.
type Reader struct {
	d     *Domain
	epoch atomic.Uint64
}

// NewReader registers a reader, initially outside any read section.
func (d *Domain) NewReader() *Reader {
	r := &Reader{d: d}
	r.epoch.Store(inactive)
	return r
}

func (r *Reader) Enter() {
	r.epoch.Store(r.d.epoch.Load())
}

func (r *Reader) Exit() {
	r.epoch.Store(inactive)
}

func (r *Reader) Value() uint64 {
	return r.epoch.Load()
}

// Advance bumps the epoch and reclaims retired objects if it is safe
// to do so, returning the number reclaimed. Only the reclaimer side of
// the ring may call it, which keeps the ring strictly single-consumer.
//
// The drain is bounded to the objects already retired when the reader
// check ran: an object enqueued before the length snapshot was
// unlinked before it, so a reader still dereferencing it would have
// shown up as active in the check. Objects retired later wait for the
// next pass.
func (d *Domain) Advance(
	ring *memory.RetireRing,
	pool memory.ReclaimablePool,
	readers ...*Reader,
) int {
	d.epoch.Add(1)

	n := ring.Len()
	if minReaderEpoch(readers...) != inactive {
		// a reader is still inside a read section
		return 0
	}

	freed := 0
	for ; n > 0; n-- {
		obj := ring.Dequeue()
		if obj == nil {
			break
		}
		pool.PutAny(obj)
		freed++
	}
	return freed
}

func minReaderEpoch(rs ...*Reader) uint64 {
	min := inactive
	for _, r := range rs {
		if r == nil {
			continue
		}
		v := r.Value()
		if v < min {
			min = v
		}
	}
	return min
}

package hazard

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"fenrir/reclaim"
)

// ErrNoFreeSlot is returned when every hazard slot is taken. This is a
// configuration error (MaxSlots undersized for the number of
// concurrently guarded goroutines), not a transient condition.
var ErrNoFreeSlot = errors.New("hazard: no free slot, MaxSlots exceeded")

const (
	DefaultMaxSlots      = 64
	DefaultScanThreshold = 128
)

// Config sizes a Domain. Zero values take the defaults.
type Config struct {
	// MaxSlots bounds the number of simultaneously held Guards.
	MaxSlots int
	// ScanThreshold is the retired-list length that triggers a scan.
	ScanThreshold int
}

// hazard slots are single-writer (the owning guard), multi-reader
// (any scanning goroutine). One slot per cache line.
type slot struct {
	taken atomic.Uint32
	ptr   unsafe.Pointer // protected address, atomic access only
	_pad  [48]byte
}

// retired records form a Treiber list; scan detaches the whole list
// with one swap, so concurrent scanners work on disjoint batches.
type retired struct {
	ptr  unsafe.Pointer
	free reclaim.Deleter
	next *retired
}

// Domain owns the hazard slots and the shared retired list. Structures
// configured with the same Domain may safely pop each other's nodes.
type Domain struct {
	slots     []slot
	threshold int

	head     atomic.Pointer[retired]
	nretired atomic.Int64

	statRetired atomic.Uint64
	statFreed   atomic.Uint64
	statScans   atomic.Uint64
}

// New creates a hazard-pointer domain.
func New(cfg Config) *Domain {
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = DefaultMaxSlots
	}
	if cfg.ScanThreshold <= 0 {
		cfg.ScanThreshold = DefaultScanThreshold
	}
	return &Domain{
		slots:     make([]slot, cfg.MaxSlots),
		threshold: cfg.ScanThreshold,
	}
}

// AcquireGuard claims a free hazard slot for the calling goroutine.
// The caller must Release the guard on every exit path.
func (d *Domain) AcquireGuard() (*Guard, error) {
	for i := range d.slots {
		if d.slots[i].taken.CompareAndSwap(0, 1) {
			return &Guard{d: d, idx: i}, nil
		}
	}
	return nil, ErrNoFreeSlot
}

// Retire transfers ownership of an unlinked object to the domain. The
// object must already be unreachable from the live structure; free
// runs exactly once, during some later scan (or immediately if the
// backlog crosses the threshold and nobody protects it).
func (d *Domain) Retire(p unsafe.Pointer, free reclaim.Deleter) {
	d.push(&retired{ptr: p, free: free})
	d.statRetired.Add(1)
	if d.nretired.Add(1) >= int64(d.threshold) {
		d.Scan()
	}
}

// Scan frees every retired object whose address no slot currently
// protects and requeues the rest. Returns the number freed.
func (d *Domain) Scan() int {
	d.statScans.Add(1)

	batch := d.head.Swap(nil)
	if batch == nil {
		return 0
	}

	// snapshot of all published hazards; taken after the retired
	// nodes were unlinked, so a missing address proves no reader
	// can still reach the node
	hazards := make(map[unsafe.Pointer]struct{}, len(d.slots))
	for i := range d.slots {
		if p := atomic.LoadPointer(&d.slots[i].ptr); p != nil {
			hazards[p] = struct{}{}
		}
	}

	freed, taken := 0, 0
	var survivors *retired
	for r := batch; r != nil; {
		next := r.next
		taken++
		if _, protected := hazards[r.ptr]; protected {
			r.next = survivors
			survivors = r
		} else {
			r.free(r.ptr)
			freed++
		}
		r = next
	}

	d.nretired.Add(int64(-taken))
	for r := survivors; r != nil; {
		next := r.next
		d.push(r)
		d.nretired.Add(1)
		r = next
	}
	d.statFreed.Add(uint64(freed))
	return freed
}

// push appends to the retired list without triggering a scan.
func (d *Domain) push(r *retired) {
	for {
		old := d.head.Load()
		r.next = old
		if d.head.CompareAndSwap(old, r) {
			return
		}
	}
}

// Pending returns the current retired-but-not-freed backlog.
func (d *Domain) Pending() int {
	return int(d.nretired.Load())
}

// Stats are monotonic counters, maintained with relaxed-style atomics.
type Stats struct {
	Retired uint64
	Freed   uint64
	Scans   uint64
}

func (d *Domain) Stats() Stats {
	return Stats{
		Retired: d.statRetired.Load(),
		Freed:   d.statFreed.Load(),
		Scans:   d.statScans.Load(),
	}
}

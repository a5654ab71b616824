package hazard

import (
	"sync/atomic"
	"unsafe"

	"fenrir/reclaim"
)

// Guard is an acquired hazard slot. It belongs to one goroutine at a
// time and protects at most one address.
type Guard struct {
	d   *Domain
	idx int
}

var _ reclaim.Guard = (*Guard)(nil)

// Protect publishes p as hazardous. Callers must re-read the shared
// location after Protect and only dereference p if it is unchanged.
func (g *Guard) Protect(p unsafe.Pointer) {
	atomic.StorePointer(&g.d.slots[g.idx].ptr, p)
}

// Clear withdraws the published address.
func (g *Guard) Clear() {
	atomic.StorePointer(&g.d.slots[g.idx].ptr, nil)
}

// Retire hands an unlinked object to the guard's domain.
func (g *Guard) Retire(p unsafe.Pointer, free reclaim.Deleter) {
	g.d.Retire(p, free)
}

// Release clears the guard and returns its slot to the domain. The
// guard must not be used afterwards.
func (g *Guard) Release() {
	g.Clear()
	g.d.slots[g.idx].taken.Store(0)
}

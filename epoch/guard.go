package epoch

import (
	"unsafe"

	"fenrir/reclaim"
)

// Thread is a registered participant. It is owned by a single
// goroutine; its state may be scanned by any advancing goroutine.
type Thread struct {
	d     *Domain
	id    int
	guard Guard
}

// Enter pins the thread: it records the observed global epoch and
// marks itself active. The returned guard is valid until Leave.
func (t *Thread) Enter() *Guard {
	st := &t.d.threads[t.id]
	st.active.Store(true)
	st.local.Store(t.d.global.Load())
	return &t.guard
}

// Guard is the pinned-region handle. Entry itself is the protection,
// so Protect and Clear are no-ops; they exist so epoch and hazard
// guards are interchangeable behind reclaim.Guard.
type Guard struct {
	t *Thread
}

var _ reclaim.Guard = (*Guard)(nil)

func (g *Guard) Protect(p unsafe.Pointer) {}

func (g *Guard) Clear() {}

// Retire files an unlinked object under the current epoch. Only valid
// between Enter and Leave.
func (g *Guard) Retire(p unsafe.Pointer, free reclaim.Deleter) {
	g.t.d.retire(g.t.id, p, free)
}

// Leave unpins the thread. The guard must not be used afterwards
// until the next Enter.
func (g *Guard) Leave() {
	g.t.d.threads[g.t.id].active.Store(false)
}

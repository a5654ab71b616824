package reclaim

import "unsafe"

// Deleter frees (or recycles) a retired object. It runs exactly once
// per retired pointer, on whichever goroutine performs the reclaim.
type Deleter func(unsafe.Pointer)

// Guard is a thread's handle into a reclamation domain while it is
// inside a protected region.
//
// Readers follow the protect → validate → use protocol: read the
// shared pointer, Protect it, re-read the shared location, and only
// dereference if it is unchanged. Domains where entry alone is the
// protection (epoch-based) implement Protect and Clear as no-ops; the
// re-read is then harmless.
type Guard interface {
	// Protect publishes the address the caller is about to
	// dereference.
	Protect(p unsafe.Pointer)

	// Clear withdraws the published address.
	Clear()

	// Retire transfers ownership of an unlinked object to the
	// guard's domain. The domain runs free once it proves no
	// goroutine can still observe p.
	Retire(p unsafe.Pointer, free Deleter)
}

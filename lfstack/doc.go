// Package lfstack implements a Treiber lock-free stack. Push and pop
// are CAS-retry loops; contention only ever causes retries, never
// incorrect results, and the only failure outcome is popping an empty
// stack.
//
// The stack never frees a node itself. A popped node is handed to the
// caller's reclaim.Guard, and the guard's domain (hazard or epoch)
// returns it to the stack's node pool once no concurrent popper can
// still observe it. That deferred hand-off is what makes node reuse
// ABA-safe.
package lfstack

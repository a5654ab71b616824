// Package memory provides the low-level primitives for object reuse
// underneath the reclamation domains: a typed object pool and a
// lock-free SPSC ring for handing retired objects from a writer to a
// reclaimer.
//
// The memory package is dependency-free and forms the foundation for
// lfstack node recycling and the rcu reclamation pipeline.
package memory

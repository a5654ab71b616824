// Package epoch implements epoch-based reclamation (EBR): a global
// epoch counter cycling through three generations, per-thread
// retirement buckets, and an advance step that frees everything
// retired two generations ago.
//
// Reads are cheap — entering a protected region is two plain atomic
// stores, with no per-access publication — at the cost of batched,
// delayed reclamation. A single registered thread that stays pinned
// blocks advancement indefinitely; that trade-off versus hazard
// pointers' bounded-but-per-access overhead is inherent to the scheme.
package epoch

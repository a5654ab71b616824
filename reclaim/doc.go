// Package reclaim defines the contract between lock-free data
// structures and the safe-memory-reclamation domains that free their
// unlinked nodes. A structure never frees memory itself: on removal it
// hands the node to a Guard, and the guard's domain frees it once no
// concurrent reader can still observe it.
//
// The package is dependency-free; hazard and epoch both implement
// Guard, and lfstack consumes it.
package reclaim

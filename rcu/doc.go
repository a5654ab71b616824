// Package rcu is the lightweight reclamation path for single-writer
// structures: readers stamp the epoch they entered at, the writer
// retires unlinked objects into an SPSC ring, and a reclaimer advances
// the epoch and drains the ring back into an object pool whenever no
// reader is inside a read section.
//
// Compared to the hazard and epoch domains this scheme is nearly free
// on the read side, but it only suits one retiring writer and a small,
// known set of readers.
package rcu

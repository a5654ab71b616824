// Package mpmc implements a bounded multi-producer multi-consumer
// queue after Dmitry Vyukov's array-based design: a power-of-two ring
// of cells, each carrying a sequence number that encodes whether the
// cell is free for a producer (seq == pos) or committed for a consumer
// (seq == pos+1).
//
// TryPush and TryPop never block; a full or empty queue is reported
// immediately. Values live inline in the cells, so the queue owns its
// storage outright and needs no reclamation domain; pointer payloads
// that require deferred reclamation are retired by the consumer after
// a successful pop.
package mpmc

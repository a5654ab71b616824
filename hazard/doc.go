// Package hazard implements a hazard-pointer reclamation domain: a
// fixed pool of hazard slots plus a retire/scan path that frees a
// retired object only once no slot publishes its address.
//
// A goroutine acquires a Guard (one hazard slot), publishes the
// pointer it is about to dereference with Protect, validates the
// shared location is unchanged, and uses the pointer. Removal paths
// hand unlinked nodes to Retire; once the retired backlog crosses the
// scan threshold the retiring goroutine scans all slots and frees
// whatever nobody protects.
//
// Memory overhead is bounded by O(slots × retire burst); the price is
// one published store per protected access.
package hazard

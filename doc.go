// Package aru implements an asynchronous read/update coordinator: a
// lock-free, multi-producer submission queue with reader/writer execution
// discipline and epoch-based reclamation of completed work.
//
// # Architecture
//
// Callers submit work through [Coordinator.Update] (exclusive, depends on
// every previously submitted node) or [Coordinator.Read] (shared, depends
// only on previously submitted updates, so reads run concurrently with one
// another). Submissions are appended to a lock-free doubly linked list via
// an atomically exchanged head pointer. Every submitting goroutine then
// drains as much of the list as the dependencies allow; the one that holds
// "mover authority" during its drain also advances the coordinator's tail.
//
// Completed nodes are retired in epoch-sized ranges called tail versions.
// A tail version is reclaimed, and the nodes it covers become eligible for
// garbage collection, once every goroutine that had acquired a pinned
// reference to it has released that reference and every older tail
// version has itself finished reclaiming — a cascading, RCU-style scheme
// built on top of the versioned-snapshot gate in [internal/atomsnap].
//
// # Thread Safety
//
//   - [Coordinator.Update], [Coordinator.Read] and [Coordinator.Sync] are
//     safe to call concurrently from any number of goroutines.
//   - [Coordinator.Destroy] requires that the caller has already quiesced
//     all outstanding submissions; calling it concurrently with Update,
//     Read or Sync is not supported.
//   - A callback passed to Update or Read runs on whichever goroutine's
//     drain first claims its node (not necessarily the submitting
//     goroutine), and runs at most once.
//
// # Execution Model
//
// Dependency order is expressed purely through list position, not wall
// clock time:
//
//  1. An UPDATE node may run only once every node submitted before it
//     (update or read) has a DONE tag.
//  2. A READ node may run once every UPDATE node submitted before it has
//     a DONE tag; prior READ nodes impose no ordering constraint.
//
// # Usage
//
//	c := aru.New()
//	defer c.Destroy()
//
//	var tag uint32
//	c.Update(&tag, func(args any) {
//	    counter := args.(*int)
//	    *counter++
//	}, &sharedCounter)
//
//	c.Sync() // opportunistically drain and advance the tail
//
// # Error Handling
//
// aru has no recoverable submission-time failure mode in Go: [New] never
// returns nil and Update/Read never return an error. A callback that
// panics propagates to whichever goroutine was executing it; the node's
// tag is left PENDING forever in that case, matching the documented
// callback contract — see [Callback].
package aru

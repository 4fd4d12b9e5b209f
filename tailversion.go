package aru

import "sync/atomic"

// tailVersion slices the submission list into a contiguous, already-closed
// range of nodes — [tailNode, headNode] — that is eligible for reclamation
// once nothing is pinning it and every older tail version has finished
// reclaiming first.
//
// headNode is nil for the newest tail version: its range is still open,
// extending to whatever the coordinator's head currently is, since nothing
// has superseded it yet.
type tailVersion struct {
	tailNode *node
	headNode *node // set once, by adjustTail, when this version is superseded

	// prev packs two things that belong conceptually to this version:
	// a pointer to the predecessor tail version, and a bit recording
	// whether this version's own release has already fired. Cascading
	// reclamation flips released (via fetch-or) and later nils out the
	// pointer component (once the predecessor itself is done), so that a
	// late release arriving here can tell at a glance it has nothing left
	// to wait on.
	prev atomic.Pointer[prevLink]

	// next is set once, by adjustTail, to link this version to the one
	// that superseded it.
	next atomic.Pointer[tailVersion]
}

type prevLink struct {
	predecessor *tailVersion
	released    bool
}

func newTailVersion(tailNode *node, predecessor *tailVersion) *tailVersion {
	v := &tailVersion{tailNode: tailNode}
	v.prev.Store(&prevLink{predecessor: predecessor})
	return v
}

// reclaim runs a tail version's release callback: invoked by the gate once
// nothing is pinning v any longer. It marks v released, and if v turns out
// to be the oldest not-yet-reclaimed version, frees its node range and
// cascades forward into any successor versions whose own release already
// fired (and is therefore waiting on this one).
func (c *Coordinator) reclaim(v *tailVersion) {
	cur := v
	checkPredecessor := true
	for {
		if checkPredecessor {
			ready := false
			for {
				old := cur.prev.Load()
				if old.released {
					// only cur's own release sets released (a cascade
					// seals with released == false), so this release
					// has already run; nothing left for us to do.
					return
				}
				marked := &prevLink{predecessor: old.predecessor, released: true}
				if cur.prev.CompareAndSwap(old, marked) {
					ready = old.predecessor == nil
					break
				}
			}
			if !ready {
				return // predecessor not yet reclaimed; it will cascade into cur later
			}
		}
		checkPredecessor = true

		freeNodeRange(cur.tailNode, cur.headNode)
		c.stats.reclamationBatches.Add(1)

		next := cur.next.Load()
		if next == nil {
			return // cur is also the newest version; nothing to cascade into
		}

		cascaded := false
		for {
			old := next.prev.Load()
			if old.released {
				cascaded = true
				break
			}
			sealed := &prevLink{predecessor: nil, released: false}
			if next.prev.CompareAndSwap(old, sealed) {
				return // sealed; next frees itself once its own refcount hits zero
			}
			// lost the race to next's own release firing concurrently; retry the read
		}
		if cascaded {
			cur = next
			checkPredecessor = false
		}
	}
}

// freeNodeRange walks from first to last (inclusive) via next links,
// dropping each node's references so the garbage collector can reclaim it.
// last == nil means "no bound yet": walk until next is nil, i.e. to
// whatever the list's current head is — used when tearing down the
// newest, still-open tail version at Destroy time.
func freeNodeRange(first, last *node) {
	cur := first
	for {
		nxt := cur.next.Load()
		done := cur == last || (last == nil && nxt == nil)
		cur.prev = nil
		cur.next.Store(nil)
		cur.callback = nil
		cur.args = nil
		if done {
			return
		}
		cur = nxt
	}
}

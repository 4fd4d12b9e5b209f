package aru

import (
	"runtime"
	"sync/atomic"

	"github.com/minseok127/aru/internal/atomsnap"
)

// Coordinator is a lock-free, multi-producer submission queue with
// reader/writer execution discipline and epoch-based reclamation. The zero
// value is not usable; construct one with New.
type Coordinator struct { // betteralign:ignore
	_ [sizeOfCacheLine - sizeOfAtomicWord]byte //nolint:unused

	// head is the most recently submitted node, exchanged atomically by
	// every submitting goroutine.
	head atomic.Pointer[node]

	_ [sizeOfCacheLine - sizeOfAtomicWord]byte //nolint:unused

	// tailMoveFlag is the single-writer token: whichever goroutine wins
	// it (CompareAndSwap false->true) is the one allowed to advance the
	// tail during its drain pass.
	tailMoveFlag atomic.Bool

	_ [sizeOfCacheLine - 1]byte //nolint:unused

	// tailInitFlag guards the bootstrap of the very first tail version;
	// every goroutine that loses the race to install it spins on this
	// instead.
	tailInitFlag atomic.Bool

	_ [sizeOfCacheLine - 1]byte //nolint:unused

	tailGate *atomsnap.Gate[tailVersion]

	spin   func()
	logger Logger
	stats  counters
}

// New constructs an idle Coordinator. It never returns nil: unlike the
// source contract's init, Go's allocator has no recoverable
// out-of-memory path for a single struct allocation to report.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		spin:   runtime.Gosched,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.tailGate = atomsnap.NewGate[tailVersion](c.reclaim)
	return c
}

// Update submits fn for exclusive execution: it runs only once every node
// submitted before it (update or read) has completed. statusTag, if
// non-nil, is set to Pending immediately and to Done once fn returns.
func (c *Coordinator) Update(statusTag *uint32, fn Callback, args any) {
	c.submit(newNode(KindUpdate, statusTag, fn, args))
}

// Read submits fn for shared execution: it runs once every update
// submitted before it has completed, concurrently with any other reads
// that are also eligible to run. statusTag behaves as in Update.
func (c *Coordinator) Read(statusTag *uint32, fn Callback, args any) {
	c.submit(newNode(KindRead, statusTag, fn, args))
}

// Sync contributes a drain cycle without submitting any work of its own:
// it executes whatever nodes are currently eligible to run and, if it
// happens to win mover authority, advances the tail. It is always safe to
// call, including when there is nothing pending.
func (c *Coordinator) Sync() {
	ref := c.tailGate.Acquire()
	if ref == nil {
		return // nothing has ever been submitted
	}
	won := c.tailMoveFlag.CompareAndSwap(false, true)
	if !won {
		c.stats.moverContentions.Add(1)
		c.logger.Log(LevelDebug, "mover", "sync: mover authority already held")
	}
	last := c.drain(ref.Value, nil)
	if won {
		if last != ref.Value.tailNode {
			c.adjustTail(ref.Value, last)
		}
		c.tailMoveFlag.Store(false)
	}
	c.tailGate.Release(ref)
}

// Destroy tears down the coordinator: it drains the gate (freeing every
// remaining tail version, and through them every remaining node) and
// discards the head pointer. Destruction while Update, Read or Sync may
// still be called concurrently from another goroutine is not supported —
// the caller must have already quiesced all outstanding submissions.
func (c *Coordinator) Destroy() {
	if c == nil {
		return
	}
	c.logger.Log(LevelDebug, "lifecycle", "destroying coordinator")
	// The current tail version's range is still open (headNode == nil);
	// reclaim walks it all the way to whatever head currently is, once
	// the gate's own installed reference is dropped here.
	c.tailGate.Destroy()
	c.head.Store(nil)
}

// submit appends n to the list, then drains as much of the list as n's
// own dependencies (and whatever mover authority this goroutine acquires)
// allow. See spec §4.3 for the numbered protocol this implements.
func (c *Coordinator) submit(n *node) {
	c.stats.nodesSubmitted.Add(1)

	won := c.tailMoveFlag.CompareAndSwap(false, true)
	if !won {
		c.stats.moverContentions.Add(1)
		c.logger.Log(LevelDebug, "mover", "submit: mover authority already held")
	}

	oldHead := c.head.Swap(n)
	if oldHead == nil {
		// First submission ever: bootstrap the first tail version before
		// anything else can observe n.
		tv := newTailVersion(n, nil)
		c.tailGate.Exchange(tv)
		c.tailInitFlag.Store(true)
	} else {
		n.prev = oldHead
		oldHead.next.Store(n)
		for !c.tailInitFlag.Load() {
			c.spin()
		}
	}

	ref := c.tailGate.Acquire()
	last := c.drain(ref.Value, n)
	if won {
		if last != ref.Value.tailNode {
			c.adjustTail(ref.Value, last)
		}
		c.tailMoveFlag.Store(false)
	}
	c.tailGate.Release(ref)
}

// drain walks forward from tv.tailNode, running every eligible node it
// finds, until it either has to stop for an unsatisfied dependency or
// reaches the current head. own is the node the calling goroutine itself
// just inserted (nil for Sync): once drain reaches it, a nil next no
// longer means "not yet written by a racing submitter" — it means "this
// is actually the current head".
//
// It returns the node the tail may advance to: the first visited node that
// was still not Done, or the last node visited if every one was Done. Every
// node before the returned one is therefore Done.
func (c *Coordinator) drain(tv *tailVersion, own *node) *node {
	cur := tv.tailNode
	var lastVisited *node
	pendingSeen := false
	afterOwn := own == nil

	for {
		if cur.tag.Load() != Done {
			if !cur.dependenciesDone(tv.tailNode) {
				return lastVisited
			}
			if cur.tryRun() {
				switch cur.kind {
				case KindUpdate:
					c.stats.updatesExecuted.Add(1)
				case KindRead:
					c.stats.readsExecuted.Add(1)
				}
			}
		}

		if !pendingSeen {
			lastVisited = cur
			pendingSeen = cur.tag.Load() != Done
		}
		if cur == own {
			afterOwn = true
		}

		if afterOwn {
			nxt := cur.next.Load()
			if nxt == nil {
				return lastVisited // reached the current head
			}
			cur = nxt
			continue
		}

		for {
			nxt := cur.next.Load()
			if nxt != nil {
				cur = nxt
				break
			}
			c.spin()
		}
	}
}

// adjustTail installs a new tail version starting at newTailNode (the node
// the calling goroutine's drain returned), retiring
// oldTV. Only ever called by the goroutine holding mover authority.
func (c *Coordinator) adjustTail(oldTV *tailVersion, newTailNode *node) {
	newTV := newTailVersion(newTailNode, oldTV)
	c.tailGate.Exchange(newTV)
	oldTV.headNode = newTailNode.prev
	oldTV.next.Store(newTV)
	c.logger.Log(LevelDebug, "tail", "tail version advanced")
}

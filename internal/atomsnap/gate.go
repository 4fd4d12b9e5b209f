// Package atomsnap implements a generic versioned-snapshot gate: a single
// mutable "current version" slot that any number of goroutines may pin a
// reference to, with the guarantee that a version's free function runs
// exactly once, only after every pinned reference to it has been released.
//
// It exists because the coordinator's epoch reclamation scheme is
// specified against an external black-box primitive with this exact
// contract (init/make/exchange/acquire/release/destroy a gate), with no
// equivalent library present anywhere in the surrounding ecosystem to
// import. This package is aru's hand-written implementation of that
// contract, kept separate so the reclamation algorithm in the parent
// package can be read without also reading the refcounting plumbing.
package atomsnap

import "sync/atomic"

// Gate holds a single "current" version of T, recycled via free once every
// acquirer has released it.
type Gate[T any] struct {
	free func(*T)
	cur  atomic.Pointer[slot[T]]
}

type slot[T any] struct {
	value *T
	// refs is biased by one: the Gate's own installed reference, dropped
	// when the version is exchanged out (or the gate destroyed).
	refs atomic.Int64
}

// NewGate constructs an empty gate. free is invoked, exactly once per
// version, once that version's reference count reaches zero.
func NewGate[T any](free func(*T)) *Gate[T] {
	return &Gate[T]{free: free}
}

// Ref is a pinned reference to a version acquired from a Gate. It must be
// released exactly once, via Gate.Release.
type Ref[T any] struct {
	Value *T
	slot  *slot[T]
}

// Exchange installs value as the new current version and returns the
// previous version's value (nil if none was installed). The gate's own
// reference to the outgoing version is dropped as part of the exchange; if
// no goroutine is still holding a Ref to it, free runs before Exchange
// returns.
func (g *Gate[T]) Exchange(value *T) *T {
	next := &slot[T]{value: value}
	next.refs.Store(1)
	old := g.cur.Swap(next)
	if old == nil {
		return nil
	}
	g.dropRef(old)
	return old.value
}

// Acquire pins and returns the currently installed version, or nil if the
// gate has never had a version installed.
func (g *Gate[T]) Acquire() *Ref[T] {
	for {
		s := g.cur.Load()
		if s == nil {
			return nil
		}
		for {
			n := s.refs.Load()
			if n <= 0 {
				// lost the race with the version being retired; the
				// gate has since moved on to a newer (or no) version.
				break
			}
			if s.refs.CompareAndSwap(n, n+1) {
				return &Ref[T]{Value: s.value, slot: s}
			}
		}
	}
}

// Release drops a pinned reference previously obtained from Acquire. r may
// be nil, in which case Release is a no-op.
func (g *Gate[T]) Release(r *Ref[T]) {
	if r == nil {
		return
	}
	g.dropRef(r.slot)
}

func (g *Gate[T]) dropRef(s *slot[T]) {
	if s.refs.Add(-1) == 0 {
		g.free(s.value)
	}
}

// Destroy drops the gate's own reference to whatever version is current,
// and is only safe to call once every other pinned reference has already
// been released (the gate has no way to wait for outstanding acquirers: it
// is the caller's responsibility to quiesce first). A nil gate is a no-op.
func (g *Gate[T]) Destroy() {
	if g == nil {
		return
	}
	old := g.cur.Swap(nil)
	if old == nil {
		return
	}
	g.dropRef(old)
}

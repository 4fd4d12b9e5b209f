package aru

import "sync/atomic"

// counters holds the coordinator's ambient metrics. Every field is a plain
// monotonic atomic counter — there is no percentile/histogram machinery
// here (see DESIGN.md for why the teacher's p-square estimator wasn't
// ported): five running totals don't need one.
type counters struct {
	_                  [sizeOfCacheLine - sizeOfAtomicWord]byte
	nodesSubmitted     atomic.Uint64
	updatesExecuted    atomic.Uint64
	readsExecuted      atomic.Uint64
	moverContentions   atomic.Uint64
	reclamationBatches atomic.Uint64
}

// Stats is a point-in-time snapshot of a Coordinator's counters.
type Stats struct {
	NodesSubmitted     uint64
	UpdatesExecuted    uint64
	ReadsExecuted      uint64
	MoverContentions   uint64
	ReclamationBatches uint64
}

// Stats returns a snapshot of the coordinator's ambient metrics. It is
// safe to call concurrently with any other Coordinator method.
func (c *Coordinator) Stats() Stats {
	return Stats{
		NodesSubmitted:     c.stats.nodesSubmitted.Load(),
		UpdatesExecuted:    c.stats.updatesExecuted.Load(),
		ReadsExecuted:      c.stats.readsExecuted.Load(),
		MoverContentions:   c.stats.moverContentions.Load(),
		ReclamationBatches: c.stats.reclamationBatches.Load(),
	}
}

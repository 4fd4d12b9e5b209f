// Package orderbook is a small fixed-depth limit order book used only by
// aru's scenario tests (see the S2/S3 testable properties): a stand-in for
// the kind of external collaborator the coordinator is meant to serialize
// access to. It has no CLI, no argument parsing and no serialization
// surface — it exists purely to give concurrent Update/Read submissions
// something non-trivial and checkable to race against.
package orderbook

// Depth is the fixed number of price levels tracked on each side.
const Depth = 20

// Level is one price/quantity pair in the book.
type Level struct {
	Price float64
	Qty   float64
}

// Book is a fixed-depth limit order book. It is not safe for concurrent
// use on its own — callers are expected to serialize access to it through
// an aru.Coordinator, which is the entire point of the exercise.
type Book struct {
	Bids [Depth]Level // index 0 is the best (highest) bid
	Asks [Depth]Level // index 0 is the best (lowest) ask

	// sequence counts every applied mutation, letting tests assert that
	// update/read ordering was respected without needing wall-clock
	// timestamps.
	sequence uint64
}

// Side identifies which side of the book an operation targets.
type Side int

const (
	Bid Side = iota
	Ask
)

// Sequence returns the number of mutations applied so far.
func (b *Book) Sequence() uint64 { return b.sequence }

// SetLevel writes price/qty at the given depth index on side, keeping
// that side sorted (best price first). Intended to run as the callback of
// an aru.Coordinator Update submission.
func (b *Book) SetLevel(side Side, index int, price, qty float64) {
	levels := b.levelsFor(side)
	levels[index] = Level{Price: price, Qty: qty}
	b.resort(side)
	b.sequence++
}

// BestBid returns the best bid level.
func (b *Book) BestBid() Level { return b.Bids[0] }

// BestAsk returns the best ask level.
func (b *Book) BestAsk() Level { return b.Asks[0] }

// Spread returns BestAsk - BestBid.
func (b *Book) Spread() float64 { return b.BestAsk().Price - b.BestBid().Price }

// Snapshot copies the current state of the book. Intended to run as the
// callback of an aru.Coordinator Read submission.
func (b *Book) Snapshot() Book {
	return *b
}

func (b *Book) levelsFor(side Side) *[Depth]Level {
	if side == Bid {
		return &b.Bids
	}
	return &b.Asks
}

func (b *Book) resort(side Side) {
	levels := b.levelsFor(side)
	// Depth is small and fixed; a plain insertion sort keeps this
	// allocation-free, which matters since it runs under the
	// coordinator's exclusive-access callback.
	for i := 1; i < Depth; i++ {
		v := levels[i]
		j := i - 1
		for j >= 0 && less(side, v, levels[j]) {
			levels[j+1] = levels[j]
			j--
		}
		levels[j+1] = v
	}
}

func less(side Side, a, b Level) bool {
	if side == Bid {
		return a.Price > b.Price
	}
	// An empty ask level (zero price) sorts after every real ask.
	if a.Price == 0 || b.Price == 0 {
		return a.Price != 0 && b.Price == 0
	}
	return a.Price < b.Price
}

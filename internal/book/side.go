package book

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// levels is the sorted price index. A btree, not a heap, so that an
// arbitrary price can be erased in O(log N) without rebuilding the
// whole structure — the shape the matching-engine REDESIGN FLAGS call
// for in place of a heap-plus-dictionary combination that can only
// delete its current root cheaply.
type levels = btree.BTreeG[*PriceLevel]

// Side is the sorted collection of price levels for one (symbol, side).
// Bids are ordered best (highest price) first; asks are ordered best
// (lowest price) first. All mutation is expected to happen under the
// caller's own lock (the owning book's per-symbol lock) — Side itself
// holds no lock.
type Side struct {
	tree *levels
}

// NewBidSide returns a Side ordered with the highest price first.
func NewBidSide() *Side {
	return &Side{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})}
}

// NewAskSide returns a Side ordered with the lowest price first.
func NewAskSide() *Side {
	return &Side{tree: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})}
}

// Best returns the best (first-ordered) price level, if any.
func (s *Side) Best() (*PriceLevel, bool) {
	return s.tree.Min()
}

// GetOrCreate returns the level at price, creating an empty one if it
// does not exist yet — price insertion is always lazy.
func (s *Side) GetOrCreate(price decimal.Decimal) *PriceLevel {
	probe := &PriceLevel{Price: price}
	if existing, ok := s.tree.Get(probe); ok {
		return existing
	}
	level := NewPriceLevel(price)
	s.tree.Set(level)
	return level
}

// Get returns the level at price without creating one.
func (s *Side) Get(price decimal.Decimal) (*PriceLevel, bool) {
	return s.tree.Get(&PriceLevel{Price: price})
}

// Delete erases the level at price.
func (s *Side) Delete(price decimal.Decimal) {
	s.tree.Delete(&PriceLevel{Price: price})
}

// Len returns the number of distinct price levels resting on this side.
func (s *Side) Len() int {
	return s.tree.Len()
}

// PruneIfEmpty deletes level from the tree if it holds no more
// residents. Matching and cancellation call this immediately after a
// mutation that might have emptied a level.
func (s *Side) PruneIfEmpty(level *PriceLevel) {
	if level.IsEmpty() {
		s.Delete(level.Price)
	}
}

// RemoveOrder excises orderID from the level at price, deleting the
// level itself if that leaves it empty. Reports whether the order was
// found.
func (s *Side) RemoveOrder(price decimal.Decimal, orderID int64) bool {
	level, ok := s.Get(price)
	if !ok {
		return false
	}
	if !level.Remove(orderID) {
		return false
	}
	if level.IsEmpty() {
		s.Delete(price)
	}
	return true
}

// Walk visits levels from best to worst, stopping early if visit
// returns false.
func (s *Side) Walk(visit func(*PriceLevel) bool) {
	s.tree.Scan(visit)
}

// Items returns every level, best to worst. Intended for snapshots and
// tests; callers must not mutate the returned levels' invariants
// without going through the Side/PriceLevel methods.
func (s *Side) Items() []*PriceLevel {
	out := make([]*PriceLevel, 0, s.tree.Len())
	s.tree.Scan(func(l *PriceLevel) bool {
		out = append(out, l)
		return true
	})
	return out
}

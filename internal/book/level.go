// Package book implements the sorted price-level index for one side of
// one symbol's order book (C3/C4 of the matching engine core): a
// btree-ordered map from price to PriceLevel, each holding a FIFO queue
// of resident order IDs.
//
// Price levels reference order IDs only; the registry owns the actual
// Order records. This indirection is what lets the book and the
// registry evolve independently without a cyclic reference between them.
package book

import "github.com/shopspring/decimal"

// PriceLevel is the aggregate state resting at one (symbol, side,
// price): total remaining quantity, order count, and the FIFO queue of
// order IDs that enforces time priority.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders []int64 // FIFO: Orders[0] is the oldest resident, matched first.

	remaining map[int64]decimal.Decimal
	total     decimal.Decimal
}

// NewPriceLevel returns an empty level at price.
func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:     price,
		remaining: make(map[int64]decimal.Decimal),
		total:     decimal.Zero,
	}
}

// TotalRemaining is the sum of (quantity - filled_quantity) over every
// order resident at this level.
func (l *PriceLevel) TotalRemaining() decimal.Decimal {
	return l.total
}

// OrderCount is the number of orders resident at this level.
func (l *PriceLevel) OrderCount() int {
	return len(l.Orders)
}

// IsEmpty reports whether the level holds no orders.
// OrderCount == 0 iff TotalRemaining == 0 — both are maintained
// together by every mutator below so callers only need check one.
func (l *PriceLevel) IsEmpty() bool {
	return len(l.Orders) == 0
}

// Enqueue admits a new resident order at the tail of the FIFO queue,
// preserving time priority.
func (l *PriceLevel) Enqueue(orderID int64, remainingQty decimal.Decimal) {
	l.Orders = append(l.Orders, orderID)
	l.remaining[orderID] = remainingQty
	l.total = l.total.Add(remainingQty)
}

// Head returns the oldest resident order ID without removing it.
func (l *PriceLevel) Head() (int64, bool) {
	if len(l.Orders) == 0 {
		return 0, false
	}
	return l.Orders[0], true
}

// Remaining returns the remaining quantity tracked for orderID at this
// level.
func (l *PriceLevel) Remaining(orderID int64) (decimal.Decimal, bool) {
	qty, ok := l.remaining[orderID]
	return qty, ok
}

// ApplyFill reduces orderID's remaining quantity by qty. It does not
// remove the order even if its remaining quantity reaches zero —
// callers remove a fully-consumed head with Remove once they've
// finished attributing the trade.
func (l *PriceLevel) ApplyFill(orderID int64, qty decimal.Decimal) {
	cur, ok := l.remaining[orderID]
	if !ok {
		return
	}
	l.remaining[orderID] = cur.Sub(qty)
	l.total = l.total.Sub(qty)
}

// Remove excises orderID from the queue. The common case is head
// removal (O(1) amortized via slice re-slicing); any other position is
// O(|queue|) — acceptable since cancellations of non-head orders are rare.
func (l *PriceLevel) Remove(orderID int64) bool {
	qty, ok := l.remaining[orderID]
	if !ok {
		return false
	}
	if l.Orders[0] == orderID {
		l.Orders = l.Orders[1:]
	} else {
		for i, id := range l.Orders {
			if id == orderID {
				l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
				break
			}
		}
	}
	delete(l.remaining, orderID)
	l.total = l.total.Sub(qty)
	return true
}

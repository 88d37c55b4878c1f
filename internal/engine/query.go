package engine

import (
	"time"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/events"
)

// snapshotDepth is the number of price levels per side sent in the
// snapshot on subscribe, matching the depth the original service passed
// to its order-book snapshot query. GetOrderBook does not use it: its
// depth comes from the caller, clamped to [1, 100].
const snapshotDepth = 20

const (
	minDepth = 1
	maxDepth = 100

	minTradeLimit = 1
	maxTradeLimit = 1000
)

// BookSnapshot is the read-only view of one symbol's order book
// returned by GetOrderBook (C8).
type BookSnapshot struct {
	Symbol    string             `json:"symbol"`
	Bids      []events.BookLevel `json:"bids"`
	Asks      []events.BookLevel `json:"asks"`
	Timestamp time.Time          `json:"timestamp"`
}

func clampDepth(depth int) int {
	if depth < minDepth {
		return minDepth
	}
	if depth > maxDepth {
		return maxDepth
	}
	return depth
}

func clampTradeLimit(limit int) int {
	if limit < minTradeLimit {
		return minTradeLimit
	}
	if limit > maxTradeLimit {
		return maxTradeLimit
	}
	return limit
}

func collectLevels(side *book.Side, depth int) []events.BookLevel {
	out := make([]events.BookLevel, 0, depth)
	count := 0
	side.Walk(func(l *book.PriceLevel) bool {
		if count >= depth {
			return false
		}
		out = append(out, events.BookLevel{
			Price:         l.Price,
			TotalQuantity: l.TotalRemaining(),
			OrderCount:    l.OrderCount(),
		})
		count++
		return true
	})
	return out
}

// GetOrderBook returns the top depth price levels per side for symbol.
// depth is clamped to [1, 100]. A symbol with no book yet resident
// returns an empty snapshot rather than an error.
func (e *Engine) GetOrderBook(symbol string, depth int) BookSnapshot {
	depth = clampDepth(depth)
	bk, ok := e.peekBook(symbol)
	if !ok {
		return BookSnapshot{Symbol: symbol, Timestamp: clock()}
	}
	bk.Lock.RLock()
	defer bk.Lock.RUnlock()
	return BookSnapshot{
		Symbol:    symbol,
		Bids:      collectLevels(bk.Bids, depth),
		Asks:      collectLevels(bk.Asks, depth),
		Timestamp: clock(),
	}
}

// GetRecentTrades returns up to limit of symbol's most recent prints,
// newest first. limit is clamped to [1, 1000].
func (e *Engine) GetRecentTrades(symbol string, limit int) []common.Trade {
	limit = clampTradeLimit(limit)
	bk, ok := e.peekBook(symbol)
	if !ok {
		return nil
	}
	bk.Lock.RLock()
	defer bk.Lock.RUnlock()
	return bk.RecentTrades(limit)
}

// Lookup returns a single order by ID, scoped to its owner.
func (e *Engine) Lookup(orderID int64, userID string) (*common.Order, error) {
	order, ok := e.registry.Get(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order.Clone(), nil
}

// ListOrders returns userID's orders, optionally filtered to one
// status, newest first.
func (e *Engine) ListOrders(userID string, status *common.Status) []*common.Order {
	orders := e.registry.ListByUser(userID, status)
	out := make([]*common.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

// Subscribe joins symbol's live event stream. The first event the
// caller observes is always a snapshot: it is built and sequence-
// stamped under the book's own lock, then buffered ahead of live
// delivery by the bus, so no update can arrive out of order ahead of
// it.
func (e *Engine) Subscribe(symbol string) *events.Subscription {
	return e.bus.SubscribeWithSnapshot(symbol, e.buildSnapshotEvent(symbol))
}

func (e *Engine) buildSnapshotEvent(symbol string) events.Event {
	bk := e.bookFor(symbol)
	bk.Lock.Lock()
	defer bk.Lock.Unlock()
	return events.Event{
		Type: events.TypeSnapshot,
		Seq:  bk.NextSeq(),
		Data: events.Snapshot{
			Symbol:    symbol,
			Bids:      collectLevels(bk.Bids, snapshotDepth),
			Asks:      collectLevels(bk.Asks, snapshotDepth),
			Timestamp: clock(),
		},
	}
}

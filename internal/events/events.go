// Package events is the matching engine's pub/sub fan-out (C7):
// per-symbol, best-effort, at-most-once delivery of order updates,
// book updates, and trades to subscribers, with snapshot-then-stream
// semantics and a gap-detectable sequence number.
package events

import (
	"time"

	"github.com/shopspring/decimal"

	"matchcore/internal/common"
)

// Type names the envelope kinds carried on the subscription stream.
type Type string

const (
	TypeSnapshot   Type = "order_book_snapshot"
	TypeOrderUpdate Type = "order_update"
	TypeBookUpdate  Type = "order_book_update"
	TypeTrade       Type = "trade"
	TypeError       Type = "error"
	TypePong        Type = "pong"
)

// Event is the envelope every subscriber receives, in execution order,
// carrying the book's strictly increasing per-symbol sequence number.
type Event struct {
	Type Type   `json:"type"`
	Data any    `json:"data"`
	Seq  uint64 `json:"seq"`
}

// OrderUpdate reports a status/fill transition for one order.
type OrderUpdate struct {
	OrderID        int64           `json:"order_id"`
	Symbol         string          `json:"symbol"`
	Side           string          `json:"side"`
	Status         string          `json:"status"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewOrderUpdate builds an OrderUpdate from the current state of o.
func NewOrderUpdate(o *common.Order) OrderUpdate {
	return OrderUpdate{
		OrderID:        o.ID,
		Symbol:         o.Symbol,
		Side:           o.Side.String(),
		Status:         o.Status.String(),
		Quantity:       o.Quantity,
		FilledQuantity: o.FilledQuantity,
		Price:          o.Price,
		Timestamp:      o.UpdatedAt,
	}
}

// BookLevel is one price level as seen by subscribers/queries: the
// user-visible name for a PriceLevel's aggregate state.
type BookLevel struct {
	Price          decimal.Decimal `json:"price"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	OrderCount     int             `json:"order_count"`
}

// BookUpdate reports a price level touched by the last operation.
// OrderCount == 0 signals the level was deleted.
type BookUpdate struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	BookLevel
}

// TradeEvent wraps a printed trade for the event stream.
type TradeEvent struct {
	ID         int64           `json:"id"`
	Symbol     string          `json:"symbol"`
	BuyOrderID int64           `json:"buy_order_id"`
	SellOrderID int64          `json:"sell_order_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// NewTradeEvent builds a TradeEvent from an executed trade record.
func NewTradeEvent(t common.Trade) TradeEvent {
	return TradeEvent{
		ID:          t.ID,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Quantity:    t.Quantity,
		Price:       t.Price,
		ExecutedAt:  t.ExecutedAt,
	}
}

// Snapshot is sent immediately on subscribe: the top-N per side, plus
// the sequence number every subsequent BookUpdate must exceed.
type Snapshot struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the canonical record for one submission. It is created once
// by the matching engine on admission and mutated only by the matching
// engine (fills) and the cancellation path; it is never deleted —
// terminal orders are retained for queries.
type Order struct {
	ID             int64
	UserID         string
	Symbol         string
	Side           Side
	Kind           OrderKind
	Quantity       decimal.Decimal
	FilledQuantity decimal.Decimal
	Price          *decimal.Decimal // required iff Kind == Limit; may also accompany Stop
	StopPrice      *decimal.Decimal // required iff Kind == Stop
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Remaining returns Quantity - FilledQuantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// Resting reports whether the order currently occupies a price level:
// a limit order that has not yet been fully filled or cancelled.
func (o *Order) Resting() bool {
	return o.Kind == Limit && (o.Status == Pending || o.Status == Partial)
}

func (o *Order) String() string {
	price := "-"
	if o.Price != nil {
		price = o.Price.String()
	}
	stop := "-"
	if o.StopPrice != nil {
		stop = o.StopPrice.String()
	}
	return fmt.Sprintf(
		"Order{id=%d user=%s symbol=%s side=%s kind=%s qty=%s filled=%s price=%s stop=%s status=%s created=%s}",
		o.ID, o.UserID, o.Symbol, o.Side, o.Kind, o.Quantity, o.FilledQuantity,
		price, stop, o.Status, o.CreatedAt.Format(time.RFC3339),
	)
}

// Clone returns a copy safe for callers to hold: mutating it never
// mutates engine-owned state.
func (o *Order) Clone() *Order {
	cp := *o
	if o.Price != nil {
		p := *o.Price
		cp.Price = &p
	}
	if o.StopPrice != nil {
		sp := *o.StopPrice
		cp.StopPrice = &sp
	}
	return &cp
}

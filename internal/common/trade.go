package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable, append-only execution record. Price is always
// the resting (maker) order's price; Quantity is the executed amount.
type Trade struct {
	ID         int64
	Symbol     string
	BuyOrderID int64
	SellOrderID int64
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	ExecutedAt time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%d symbol=%s buy=%d sell=%d qty=%s price=%s at=%s}",
		t.ID, t.Symbol, t.BuyOrderID, t.SellOrderID, t.Quantity, t.Price,
		t.ExecutedAt.Format(time.RFC3339),
	)
}

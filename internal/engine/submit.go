package engine

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/common"
)

// Submit admits one order: it is validated, assigned an ID, and stored
// in the registry regardless of outcome. A validation
// failure stores the order as Rejected and returns the validation
// error without touching any book. A STOP order is armed and returned
// without touching any book either — it waits in the pending-stops set
// until a printed trade crosses its trigger. LIMIT and MARKET orders
// are matched immediately against bk's resting liquidity.
func (e *Engine) Submit(
	userID, symbol string,
	side common.Side,
	kind common.OrderKind,
	quantity decimal.Decimal,
	price, stopPrice *decimal.Decimal,
) (*common.Order, error) {
	quantity = common.NormalizeDecimal(quantity)
	if price != nil {
		p := common.NormalizeDecimal(*price)
		price = &p
	}
	if stopPrice != nil {
		sp := common.NormalizeDecimal(*stopPrice)
		stopPrice = &sp
	}

	now := clock()
	order := &common.Order{
		ID:             e.ids.NextOrderID(),
		UserID:         userID,
		Symbol:         symbol,
		Side:           side,
		Kind:           kind,
		Quantity:       quantity,
		FilledQuantity: decimal.Zero,
		Price:          price,
		StopPrice:      stopPrice,
		Status:         common.Pending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if verr := validateSubmission(side, kind, quantity, price, stopPrice); verr != nil {
		order.Status = common.Rejected
		e.registry.Put(order)
		return order, verr
	}
	e.registry.Put(order)

	if kind == common.Stop {
		e.armStop(order)
		return order, nil
	}

	bk := e.bookFor(symbol)
	trades, evs := e.matchAndRest(bk, order)
	for _, ev := range evs {
		e.bus.Publish(symbol, ev)
	}
	if len(trades) > 0 {
		e.triggerStops(symbol, trades)
	}
	return order, nil
}

package engine

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/common"
)

// armStop adds order to its symbol's pending-stop set. Stops are kept
// in admission order, which is also CreatedAt order since IDs are
// allocated monotonically — simultaneous triggers fire oldest-first
// with no extra sort needed.
func (e *Engine) armStop(order *common.Order) {
	e.stopsMu.Lock()
	defer e.stopsMu.Unlock()
	e.stops[order.Symbol] = append(e.stops[order.Symbol], order)
}

// disarmStop removes orderID from its symbol's pending-stop set, if
// still present. Used by Cancel.
func (e *Engine) disarmStop(symbol string, orderID int64) {
	e.stopsMu.Lock()
	defer e.stopsMu.Unlock()
	pending := e.stops[symbol]
	for i, o := range pending {
		if o.ID == orderID {
			e.stops[symbol] = append(pending[:i], pending[i+1:]...)
			return
		}
	}
}

// crosses reports whether a trade printed at price triggers a stop
// order of this side armed at stopPrice: a BUY stop triggers when the
// market trades at or above its trigger; a SELL stop triggers at or
// below.
func crosses(side common.Side, stopPrice, price decimal.Decimal) bool {
	if side == common.Buy {
		return price.GreaterThanOrEqual(stopPrice)
	}
	return price.LessThanOrEqual(stopPrice)
}

// triggerStops re-checks symbol's pending stops against trades just
// printed by one matching operation, converts every stop whose trigger
// is crossed into a LIMIT (if it carries a price) or MARKET order, and
// resubmits it through the same matching path in place — it keeps its
// original ID rather than being reissued as a new order. A stop that
// itself prints trades can cascade into triggering further stops,
// which is why this recurses on the new trades before returning.
func (e *Engine) triggerStops(symbol string, trades []common.Trade) {
	e.stopsMu.Lock()
	pending := e.stops[symbol]
	var fired []*common.Order
	remaining := pending[:0:0]
	for _, stop := range pending {
		triggered := false
		for _, t := range trades {
			if crosses(stop.Side, *stop.StopPrice, t.Price) {
				triggered = true
				break
			}
		}
		if triggered {
			fired = append(fired, stop)
		} else {
			remaining = append(remaining, stop)
		}
	}
	e.stops[symbol] = remaining
	e.stopsMu.Unlock()

	for _, stop := range fired {
		kind := common.Market
		if stop.Price != nil {
			kind = common.Limit
		}
		e.registry.ConvertStop(stop.ID, kind)

		bk := e.bookFor(symbol)
		newTrades, evs := e.matchAndRest(bk, stop)
		for _, ev := range evs {
			e.bus.Publish(symbol, ev)
		}
		if len(newTrades) > 0 {
			e.triggerStops(symbol, newTrades)
		}
	}
}

package engine

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/book"
	"matchcore/internal/common"
	"matchcore/internal/events"
	"matchcore/internal/matchbook"
)

// touchedLevel remembers one price level mutated by an operation, and
// which side it lives on, so a single book_update event can be emitted
// for it once the operation completes.
type touchedLevel struct {
	level *book.PriceLevel
	side  common.Side
}

func appendTouched(touched []touchedLevel, seen map[*book.PriceLevel]bool, level *book.PriceLevel, side common.Side) []touchedLevel {
	if seen[level] {
		return touched
	}
	seen[level] = true
	return append(touched, touchedLevel{level: level, side: side})
}

// sidesFor returns (own, opposite) book sides for side: own is where a
// resting limit order of this side would sit; opposite is where the
// engine looks for counterparties.
func sidesFor(bk *matchbook.Book, side common.Side) (own, opposite *book.Side) {
	if side == common.Buy {
		return bk.Bids, bk.Asks
	}
	return bk.Asks, bk.Bids
}

// matchAndRest runs the price/time-priority matching algorithm for
// order against bk, under bk's exclusive lock. It mutates the registry
// for every order touched (maker fills, the incoming order's final
// fill/status) and returns the trades printed and the events to
// publish, in a fixed order: trades first (in execution order), then
// updates for the resting side, then the order-update for the incoming
// order.
func (e *Engine) matchAndRest(bk *matchbook.Book, order *common.Order) ([]common.Trade, []events.Event) {
	bk.Lock.Lock()
	defer bk.Lock.Unlock()

	own, opposite := sidesFor(bk, order.Side)

	remaining := order.Quantity
	filled := decimal.Zero

	var trades []common.Trade
	var tradeEvents []events.Event
	var makerEvents []events.Event

	touched := make([]touchedLevel, 0, 4)
	seen := make(map[*book.PriceLevel]bool, 4)

	for remaining.Sign() > 0 {
		level, ok := opposite.Best()
		if !ok {
			break
		}
		if order.Kind == common.Limit {
			if order.Side == common.Buy && level.Price.GreaterThan(*order.Price) {
				break
			}
			if order.Side == common.Sell && level.Price.LessThan(*order.Price) {
				break
			}
		}

		for !level.IsEmpty() && remaining.Sign() > 0 {
			headID, ok := level.Head()
			if !ok {
				break
			}
			makerOrder, found := e.registry.Get(headID)
			if !found {
				breach("resting order %d referenced by price level %s is missing from the registry", headID, level.Price)
				return trades, nil
			}
			headRemaining, _ := level.Remaining(headID)

			qty := decimal.Min(remaining, headRemaining)

			var buyID, sellID int64
			if order.Side == common.Buy {
				buyID, sellID = order.ID, makerOrder.ID
			} else {
				buyID, sellID = makerOrder.ID, order.ID
			}
			trade := common.Trade{
				ID:          e.ids.NextTradeID(),
				Symbol:      order.Symbol,
				BuyOrderID:  buyID,
				SellOrderID: sellID,
				Quantity:    qty,
				Price:       level.Price,
				ExecutedAt:  clock(),
			}
			bk.RecordTrade(trade)
			trades = append(trades, trade)
			tradeEvents = append(tradeEvents, events.Event{
				Type: events.TypeTrade,
				Seq:  bk.NextSeq(),
				Data: events.NewTradeEvent(trade),
			})

			level.ApplyFill(headID, qty)
			newMakerFilled := makerOrder.FilledQuantity.Add(qty)
			makerStatus := common.Partial
			if newMakerFilled.Equal(makerOrder.Quantity) {
				makerStatus = common.Filled
			}
			e.registry.MutateFill(headID, newMakerFilled, makerStatus)
			if makerStatus == common.Filled {
				level.Remove(headID)
			}
			makerEvents = append(makerEvents, events.Event{
				Type: events.TypeOrderUpdate,
				Seq:  bk.NextSeq(),
				Data: events.NewOrderUpdate(makerOrder),
			})

			remaining = remaining.Sub(qty)
			filled = filled.Add(qty)
			touched = appendTouched(touched, seen, level, order.Side.Opposite())
		}
		opposite.PruneIfEmpty(level)
	}

	var finalStatus common.Status
	switch {
	case order.Kind == common.Limit && remaining.Sign() > 0:
		level := own.GetOrCreate(*order.Price)
		level.Enqueue(order.ID, remaining)
		touched = appendTouched(touched, seen, level, order.Side)
		if filled.Sign() > 0 {
			finalStatus = common.Partial
		} else {
			finalStatus = common.Pending
		}
	case order.Kind == common.Market && remaining.Sign() > 0:
		finalStatus = common.Cancelled
	default:
		finalStatus = common.Filled
	}
	e.registry.MutateFill(order.ID, filled, finalStatus)

	bookEvents := make([]events.Event, 0, len(touched))
	for _, t := range touched {
		bookEvents = append(bookEvents, events.Event{
			Type: events.TypeBookUpdate,
			Seq:  bk.NextSeq(),
			Data: events.BookUpdate{
				Symbol: bk.Symbol,
				Side:   t.side.String(),
				BookLevel: events.BookLevel{
					Price:         t.level.Price,
					TotalQuantity: t.level.TotalRemaining(),
					OrderCount:    t.level.OrderCount(),
				},
			},
		})
	}

	out := make([]events.Event, 0, len(tradeEvents)+len(makerEvents)+len(bookEvents)+1)
	out = append(out, tradeEvents...)
	out = append(out, makerEvents...)
	out = append(out, bookEvents...)
	out = append(out, events.Event{
		Type: events.TypeOrderUpdate,
		Seq:  bk.NextSeq(),
		Data: events.NewOrderUpdate(order),
	})

	return trades, out
}

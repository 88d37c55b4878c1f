package engine

import (
	"matchcore/internal/common"
	"matchcore/internal/events"
)

// Cancel cancels orderID on behalf of userID. A resting
// LIMIT order is excised from its price level and a book_update is
// emitted for that level; an armed STOP order is removed from the
// pending set with no book event. Either way the order's final state
// becomes Cancelled and a single order_update is published.
func (e *Engine) Cancel(orderID int64, userID string) (*common.Order, error) {
	order, ok := e.registry.Get(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if order.Status.IsTerminal() {
		return nil, ErrTerminalState
	}

	var bookEvent *events.Event
	var orderSeq uint64

	if order.Resting() {
		bk := e.bookFor(order.Symbol)
		own, _ := sidesFor(bk, order.Side)

		bk.Lock.Lock()
		if level, ok := own.Get(*order.Price); ok && level.Remove(order.ID) {
			own.PruneIfEmpty(level)
			bookEvent = &events.Event{
				Type: events.TypeBookUpdate,
				Seq:  bk.NextSeq(),
				Data: events.BookUpdate{
					Symbol: bk.Symbol,
					Side:   order.Side.String(),
					BookLevel: events.BookLevel{
						Price:         level.Price,
						TotalQuantity: level.TotalRemaining(),
						OrderCount:    level.OrderCount(),
					},
				},
			}
		}
		orderSeq = bk.NextSeq()
		bk.Lock.Unlock()
	} else if order.Kind == common.Stop {
		e.disarmStop(order.Symbol, order.ID)
		bk := e.bookFor(order.Symbol)
		bk.Lock.Lock()
		orderSeq = bk.NextSeq()
		bk.Lock.Unlock()
	}

	e.registry.MutateStatus(order.ID, common.Cancelled)

	if bookEvent != nil {
		e.bus.Publish(order.Symbol, *bookEvent)
	}
	e.bus.Publish(order.Symbol, events.Event{
		Type: events.TypeOrderUpdate,
		Seq:  orderSeq,
		Data: events.NewOrderUpdate(order),
	})

	return order, nil
}

package engine

import (
	"github.com/orderflow/matchcore/events"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/matching"
)

// processSubmission runs the full submit_order operation of spec.md §4.6
// for one order. Only ever called from the dispatcher goroutine, so it
// never races another taker's processSubmission/processCancel on this
// engine.
func (e *Engine) processSubmission(order *domain.Order) []events.Event {
	var evs []events.Event
	evs = append(evs, events.Event{Kind: events.KindOrderReceived, OrderID: order.ID, Timestamp: now()})

	if err := domain.ValidateOrder(order, e.cfg); err != nil {
		order.Reject()
		evs = append(evs, events.Event{Kind: events.KindOrderRejected, OrderID: order.ID, Reason: err, Timestamp: now()})
		e.sink.OnEvents(evs)
		return evs
	}

	order.Accept(e.nextSequence())
	evs = append(evs, events.Event{Kind: events.KindOrderAccepted, OrderID: order.ID, Timestamp: now()})

	opposite := e.sideFor(order.Side.Opposite())
	trades := matching.MatchOrder(order, opposite, e.policy)
	for _, tr := range trades {
		evs = append(evs, events.Event{Kind: events.KindOrderMatched, Trade: tr, Timestamp: tr.Timestamp})
	}

	evs = append(evs, e.settleTaker(order)...)

	e.sink.OnEvents(evs)
	return evs
}

// settleTaker decides the taker's fate from (remaining, filled, TIF) per
// spec.md §4.6 step 6. The spec's literal text only threads TIF through
// the filled>0 branch, but test S3 (IOC, zero fill) requires IOC/FOK to
// still cancel a taker that matched nothing — read as eliding the branch
// for brevity rather than an intentional asymmetry, so TIF is applied
// uniformly whenever remaining > 0.
func (e *Engine) settleTaker(order *domain.Order) []events.Event {
	remaining := order.Remaining()
	if remaining.IsZero() {
		return []events.Event{{Kind: events.KindOrderFilled, OrderID: order.ID, TotalFilled: order.Filled(), Timestamp: now()}}
	}

	if order.Filled().IsPositive() {
		partial := events.Event{Kind: events.KindOrderPartiallyFilled, OrderID: order.ID, Filled: order.Filled(), Remaining: remaining, Timestamp: now()}
		return append([]events.Event{partial}, e.applyTIF(order)...)
	}
	return e.applyTIF(order)
}

// applyTIF rests or terminates order per its time-in-force (spec.md
// §4.6 step 6 sub-bullets).
func (e *Engine) applyTIF(order *domain.Order) []events.Event {
	switch order.TIF {
	case domain.ImmediateOrCancel, domain.FillOrKill:
		order.TryCancel()
		return []events.Event{{Kind: events.KindOrderCancelled, OrderID: order.ID, Timestamp: now()}}
	default: // GoodTillCancel, GoodTillDate
		if !order.IsRestable() {
			// A market order can never rest; with no book-side slot to
			// occupy it is cancelled instead of silently vanishing.
			order.TryCancel()
			return []events.Event{{Kind: events.KindOrderCancelled, OrderID: order.ID, Timestamp: now()}}
		}
		e.restOrder(order)
		return []events.Event{{Kind: events.KindOrderAddedToBook, OrderID: order.ID, Price: *order.Price, Quantity: order.Remaining(), Timestamp: now()}}
	}
}

// restOrder inserts order into its own side and indexes it for cancel
// lookup (spec.md §4.6 "Order index for cancel").
func (e *Engine) restOrder(order *domain.Order) {
	side := e.sideFor(order.Side)
	if err := side.Add(order); err != nil {
		return
	}
	e.indexMu.Lock()
	e.index[order.ID] = order
	e.indexMu.Unlock()
}

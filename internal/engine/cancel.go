package engine

import (
	"github.com/google/uuid"
	"github.com/orderflow/matchcore/events"
)

// processCancel implements spec.md §4.6 cancel_order: idempotent, returns
// nil if the id is unknown or the order is already terminal. The
// cancelled order stays queued in its level until a match next visits it
// and skips it; its index entry is never removed, so a later cancel of the
// same id finds it and returns nil (spec.md §4.6 "Order index for cancel").
func (e *Engine) processCancel(id uuid.UUID) *events.Event {
	e.indexMu.RLock()
	order, ok := e.index[id]
	e.indexMu.RUnlock()
	if !ok {
		return nil
	}
	if !order.TryCancel() {
		return nil
	}
	ev := events.Event{Kind: events.KindOrderCancelled, OrderID: id, Timestamp: now()}
	e.sink.OnEvents([]events.Event{ev})
	return &ev
}

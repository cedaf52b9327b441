// Package events implements the one-way observer contract of spec.md
// §4.7: the engine publishes batches of lifecycle events; sinks are
// infallible from the engine's perspective, so nothing here ever returns
// an error that could unwind the match path.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/domain"
)

// Kind tags which of the nine event shapes a Event carries (spec.md §4.7).
type Kind int8

const (
	KindOrderReceived Kind = iota
	KindOrderAccepted
	KindOrderRejected
	KindOrderMatched
	KindOrderPartiallyFilled
	KindOrderFilled
	KindOrderCancelled
	KindOrderExpired
	KindOrderAddedToBook
)

func (k Kind) String() string {
	switch k {
	case KindOrderReceived:
		return "OrderReceived"
	case KindOrderAccepted:
		return "OrderAccepted"
	case KindOrderRejected:
		return "OrderRejected"
	case KindOrderMatched:
		return "OrderMatched"
	case KindOrderPartiallyFilled:
		return "OrderPartiallyFilled"
	case KindOrderFilled:
		return "OrderFilled"
	case KindOrderCancelled:
		return "OrderCancelled"
	case KindOrderExpired:
		return "OrderExpired"
	case KindOrderAddedToBook:
		return "OrderAddedToBook"
	default:
		return "Unknown"
	}
}

// Event is a flat tagged-union carrying every field any event kind needs;
// only the fields relevant to Kind are meaningful for a given value, the
// same polymorphism choice spec.md §9 sanctions for matching algorithms.
type Event struct {
	Kind      Kind
	Timestamp time.Time

	OrderID uuid.UUID
	Reason  error

	Trade domain.Trade

	Filled    domain.Quantity
	Remaining domain.Quantity

	TotalFilled domain.Quantity

	Price    domain.Price
	Quantity domain.Quantity
}

// Sink is the observer contract of spec.md §4.7.
type Sink interface {
	OnEvents(batch []Event)
}

// onEventFunc is the single-event form LogSink and MetricsSink are built
// from: each implements OnEvents by calling loopOnEvents with its own
// per-event method (spec.md §4.7 "default-implemented as a loop over
// on_event(e)"). The Sink interface itself has no per-event method.
type onEventFunc func(Event)

func loopOnEvents(batch []Event, f onEventFunc) {
	for _, e := range batch {
		f(e)
	}
}

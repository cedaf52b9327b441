package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/numeric"
)

// Quantity and Price are re-exported here so the rest of the engine can
// depend on internal/domain alone for its everyday vocabulary.
type (
	Price    = numeric.Price
	Quantity = numeric.Quantity
)

// Side is the direction of an order.
type Side int8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "Buy"
	}
	return "Sell"
}

// Opposite returns the other side, used to pick which book side a taker
// matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType distinguishes limit, market, and stop-limit orders. StopLimit
// carries its trigger price in Order.TriggerPrice; activation of the
// trigger is a caller responsibility (spec.md §1 Non-goals).
type OrderType int8

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
	OrderTypeStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeMarket:
		return "Market"
	case OrderTypeStopLimit:
		return "StopLimit"
	default:
		return "Unknown"
	}
}

// TimeInForce governs what happens to an order's remainder after it is
// partially (or not at all) matched on submission.
type TimeInForce int8

const (
	GoodTillCancel TimeInForce = iota
	ImmediateOrCancel
	FillOrKill
	GoodTillDate
)

func (t TimeInForce) String() string {
	switch t {
	case GoodTillCancel:
		return "GTC"
	case ImmediateOrCancel:
		return "IOC"
	case FillOrKill:
		return "FOK"
	case GoodTillDate:
		return "GTD"
	default:
		return "Unknown"
	}
}

// Order is the fundamental unit of trading. Immutable fields are set at
// construction; mutable fields (remaining/state/sequence, with filled
// derived from remaining) are updated concurrently via atomics and must
// only be read through the
// accessor methods below — never by touching the struct fields directly
// from outside this package.
type Order struct {
	ID         uuid.UUID
	UserID     string
	Instrument string
	Side       Side
	Type       OrderType
	Price      *Price // nil for market orders
	TriggerPrice *Price // set only when Type == OrderTypeStopLimit

	OriginalQty Quantity
	TIF         TimeInForce
	ExpireAt    *time.Time // set only when TIF == GoodTillDate
	CreatedAt   time.Time

	Visible    bool
	DisplayQty *Quantity // iceberg display slice; refill policy is undefined (spec.md §9)

	remaining atomic.Int64
	state     atomic.Int32
	sequence  atomic.Int64
}

// NewOrder constructs a Pending order. The engine is the sole transitioner
// of its state thereafter.
func NewOrder(id uuid.UUID, userID, instrument string, side Side, typ OrderType, price *Price, qty Quantity, tif TimeInForce) *Order {
	o := &Order{
		ID:          id,
		UserID:      userID,
		Instrument:  instrument,
		Side:        side,
		Type:        typ,
		Price:       price,
		OriginalQty: qty,
		TIF:         tif,
		CreatedAt:   time.Now(),
		Visible:     true,
	}
	o.remaining.Store(qty.RawValue())
	o.state.Store(int32(StatePending))
	return o
}

func (o *Order) State() State       { return State(o.state.Load()) }
func (o *Order) Sequence() int64    { return o.sequence.Load() }
func (o *Order) SetSequence(s int64) { o.sequence.Store(s) }

// Remaining returns the live remaining quantity.
func (o *Order) Remaining() Quantity {
	return numeric.FromRaw[numeric.S9](o.remaining.Load())
}

// Filled is derived from OriginalQty - Remaining, which are always
// consistent by construction (remaining only ever decreases from
// OriginalQty), so no separate atomic field is needed to keep them in
// sync.
func (o *Order) Filled() Quantity {
	rem := o.remaining.Load()
	return numeric.FromRaw[numeric.S9](o.OriginalQty.RawValue() - rem)
}

// transitionTo enforces the state machine of state.go; an illegal
// transition is a programmer error and panics.
func (o *Order) transitionTo(target State) {
	for {
		cur := State(o.state.Load())
		if !isValidTransition(cur, target) {
			panic(ErrIllegalTransition{From: cur, To: target})
		}
		if o.state.CompareAndSwap(int32(cur), int32(target)) {
			return
		}
	}
}

// Accept moves Pending -> Accepted and assigns the engine-issued sequence
// number.
func (o *Order) Accept(sequence int64) {
	o.sequence.Store(sequence)
	o.transitionTo(StateAccepted)
}

// Reject moves Pending -> Rejected.
func (o *Order) Reject() {
	o.transitionTo(StateRejected)
}

// Expire moves Accepted/PartiallyFilled -> Expired.
func (o *Order) Expire() {
	o.transitionTo(StateExpired)
}

// Resting an order does not change its state (it stays Accepted or
// PartiallyFilled); it only matters for the book/index side, so Order has
// no method for it.

// TryFill attempts to reduce remaining by q and update state to Filled or
// PartiallyFilled. Returns false if q exceeds the live remaining or the
// order is already terminal. Implements the CAS-loop of spec.md §4.2; the
// tiny window between the remaining CAS and the state CAS is the one
// spec.md §9 documents as a benign cancel/fill race — if a concurrent
// cancel wins the state race after we've already committed the quantity
// reduction, we leave the terminal state in place rather than fight it.
func (o *Order) TryFill(q Quantity) bool {
	if q.RawValue() <= 0 {
		return false
	}
	for {
		st := State(o.state.Load())
		if st.IsTerminal() {
			return false
		}
		rem := o.remaining.Load()
		if rem < q.RawValue() {
			return false
		}
		newRem := rem - q.RawValue()
		if !o.remaining.CompareAndSwap(rem, newRem) {
			continue
		}
		target := StatePartiallyFilled
		if newRem == 0 {
			target = StateFilled
		}
		for {
			cur := State(o.state.Load())
			if cur.IsTerminal() {
				// A concurrent cancel won the state race after our
				// quantity reduction already landed; the trade stands,
				// the terminal state stands.
				return true
			}
			if o.state.CompareAndSwap(int32(cur), int32(target)) {
				return true
			}
		}
	}
}

// TryCancel CAS-transitions Accepted/PartiallyFilled -> Cancelled.
// Idempotent: a second call after success returns false.
func (o *Order) TryCancel() bool {
	for {
		cur := State(o.state.Load())
		if cur != StateAccepted && cur != StatePartiallyFilled {
			return false
		}
		if o.state.CompareAndSwap(int32(cur), int32(StateCancelled)) {
			return true
		}
	}
}

// VisibleQuantity returns 0 if the order is hidden; otherwise
// min(DisplayQty, Remaining) if a display quantity is set, else Remaining.
func (o *Order) VisibleQuantity() Quantity {
	if !o.Visible {
		return numeric.Zero[numeric.S9]()
	}
	rem := o.Remaining()
	if o.DisplayQty == nil {
		return rem
	}
	if o.DisplayQty.LessThan(rem) {
		return *o.DisplayQty
	}
	return rem
}

// IsRestable reports whether the order type/price combination can rest on
// the book at all — market orders have no price to rest at (spec.md §9).
func (o *Order) IsRestable() bool {
	return o.Type == OrderTypeLimit && o.Price != nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{%s %s %s %s@%v qty=%s rem=%s state=%s}",
		o.ID, o.Side, o.Type, o.Instrument, o.Price, o.OriginalQty, o.Remaining(), o.State())
}

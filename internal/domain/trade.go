package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/numeric"
)

// Trade is a completed match, immutable once created. Price is always the
// maker's resting price (spec.md §3.3).
type Trade struct {
	ID           uuid.UUID
	Instrument   string
	MakerOrderID uuid.UUID
	TakerOrderID uuid.UUID
	Price        Price
	Quantity     Quantity
	Timestamp    time.Time
}

// NewTrade constructs a Trade with a fresh identifier.
func NewTrade(instrument string, maker, taker uuid.UUID, price Price, qty Quantity) Trade {
	return Trade{
		ID:           uuid.New(),
		Instrument:   instrument,
		MakerOrderID: maker,
		TakerOrderID: taker,
		Price:        price,
		Quantity:     qty,
		Timestamp:    time.Now(),
	}
}

// Notional returns price × quantity, overflow-checked (spec.md §3.3).
func (t Trade) Notional() (Price, error) {
	return t.Price.CheckedMul(t.Quantity)
}

// NotionalMicro returns the trade's notional rescaled to S6 micro-unit
// precision, the coarser scale internal/numeric reserves for reporting
// (as opposed to Price/Quantity's full S9 precision used for matching).
func (t Trade) NotionalMicro() (numeric.FixedDecimal[numeric.S6], error) {
	notional, err := t.Notional()
	if err != nil {
		return numeric.FixedDecimal[numeric.S6]{}, err
	}
	return numeric.ConvertScale[numeric.S9, numeric.S6](notional)
}

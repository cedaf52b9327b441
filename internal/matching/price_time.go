package matching

import (
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/orderbook"
)

// priceTimePolicy is strict FIFO within a level (spec.md §4.5.1).
type priceTimePolicy struct {
	useSIMD bool
}

func (p *priceTimePolicy) usesSIMD() bool { return p.useSIMD }

func (p *priceTimePolicy) allocate(taker *domain.Order, level *orderbook.PriceLevel) []domain.Trade {
	var trades []domain.Trade
	for taker.Remaining().IsPositive() {
		maker, ok := level.PopFront()
		if !ok {
			break
		}
		makerRemaining := maker.Remaining()
		if makerRemaining.IsZero() {
			// Already fully consumed by a concurrent event; drop and
			// continue without counting it as progress.
			continue
		}
		qty := minQty(taker.Remaining(), makerRemaining)
		trade, filled := fillOne(taker, maker, qty)
		if !filled {
			// Concurrent cancel/fill raced us; treat as zero fill and
			// move to the next resting order (spec.md §4.5 "Common
			// failure semantics").
			continue
		}
		level.SubtractAggregate(qty)
		trades = append(trades, trade)

		if maker.Remaining().IsPositive() {
			// No loss of priority: the partially filled maker keeps its
			// place at the head of the queue and the level step
			// terminates (spec.md §4.5.1).
			level.PushFront(maker)
			break
		}
	}
	return trades
}

package matching

import (
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/orderbook"
)

// thresholdProRataPolicy implements spec.md §4.5.5: orders below the
// threshold get strict FIFO priority; the remainder is allocated pro-rata
// across orders at or above the threshold.
type thresholdProRataPolicy struct {
	threshold   domain.Quantity
	minQuantity domain.Quantity
}

func (p *thresholdProRataPolicy) usesSIMD() bool { return false }

func (p *thresholdProRataPolicy) allocate(taker *domain.Order, level *orderbook.PriceLevel) []domain.Trade {
	orders := level.Drain()
	if len(orders) == 0 {
		return nil
	}

	var large []*domain.Order
	var trades []domain.Trade

	for _, o := range orders {
		if o.Remaining().LessThan(p.threshold) {
			if !taker.Remaining().IsPositive() {
				continue
			}
			qty := minQty(taker.Remaining(), o.Remaining())
			if trade, filled := fillOne(taker, o, qty); filled {
				trades = append(trades, trade)
			}
			continue
		}
		large = append(large, o)
	}

	trades = append(trades, allocateProRataOver(taker, large, p.minQuantity)...)

	requeueSurvivors(level, orders)
	return trades
}

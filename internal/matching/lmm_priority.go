package matching

import (
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/orderflow/matchcore/internal/orderbook"
)

// scaleExp9 is 10^9, the exponent of the S9 scale Price/Quantity always
// use; needed to rescale a fraction (itself a Price) against a quantity
// in lmmPriorityPolicy's phase-1 split.
const scaleExp9 = 1_000_000_000

// lmmPriorityPolicy implements spec.md §4.5.4: a privileged slice for
// designated lead-market-maker accounts, followed by a pro-rata pass over
// everyone eligible.
type lmmPriorityPolicy struct {
	minQuantity   domain.Quantity
	accounts      map[string]struct{}
	allocationPct domain.Price // fraction in [0,1]
}

func (p *lmmPriorityPolicy) isLMM(o *domain.Order) bool {
	_, ok := p.accounts[o.UserID]
	return ok
}

func (p *lmmPriorityPolicy) usesSIMD() bool { return false }

func (p *lmmPriorityPolicy) allocate(taker *domain.Order, level *orderbook.PriceLevel) []domain.Trade {
	orders := level.Drain()
	if len(orders) == 0 {
		return nil
	}

	eligibleIdx := make([]int, 0, len(orders))
	lmmIdx := make([]int, 0, len(orders))
	for i, o := range orders {
		if !isEligible(o, p.minQuantity) {
			continue
		}
		eligibleIdx = append(eligibleIdx, i)
		if p.isLMM(o) {
			lmmIdx = append(lmmIdx, i)
		}
	}

	phase1 := make(map[int]int64, len(lmmIdx))
	var lmmAllocated int64
	if len(lmmIdx) > 0 && taker.Remaining().IsPositive() {
		quantityToFill := taker.Remaining().RawValue()
		lmmSlice, err := numeric.MulDivFloor(quantityToFill, p.allocationPct.RawValue(), scaleExp9)
		if err == nil && lmmSlice > 0 {
			var lmmTotal int64
			for _, i := range lmmIdx {
				lmmTotal += orders[i].Remaining().RawValue()
			}
			if lmmTotal > 0 {
				var allocated int64
				for _, i := range lmmIdx {
					amt, err := numeric.MulDivFloor(orders[i].Remaining().RawValue(), lmmSlice, lmmTotal)
					if err != nil {
						continue
					}
					phase1[i] = amt
					allocated += amt
				}
				phase1[lmmIdx[0]] += lmmSlice - allocated
				lmmAllocated = lmmSlice
			}
		}
	}

	phase2 := make(map[int]int64, len(eligibleIdx))
	if len(eligibleIdx) > 0 {
		remainder := taker.Remaining().RawValue() - lmmAllocated
		if remainder > 0 {
			var eligibleTotal int64
			for _, i := range eligibleIdx {
				eligibleTotal += orders[i].Remaining().RawValue()
			}
			if eligibleTotal > 0 {
				var allocated int64
				for _, i := range eligibleIdx {
					amt, err := numeric.MulDivFloor(orders[i].Remaining().RawValue(), remainder, eligibleTotal)
					if err != nil {
						continue
					}
					phase2[i] = amt
					allocated += amt
				}
				phase2[eligibleIdx[0]] += remainder - allocated
			}
		}
	}

	var trades []domain.Trade
	for i, maker := range orders {
		amt := phase1[i] + phase2[i]
		if amt <= 0 {
			continue
		}
		qty := numeric.FromRaw[numeric.S9](amt)
		if qty.GreaterThan(maker.Remaining()) {
			qty = maker.Remaining()
		}
		trade, filled := fillOne(taker, maker, qty)
		if !filled {
			continue
		}
		trades = append(trades, trade)
	}

	requeueSurvivors(level, orders)
	return trades
}

package matching

import (
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/orderflow/matchcore/internal/orderbook"
)

// proRataPolicy implements spec.md §4.5.2 (plain pro-rata) and, when
// topOfBookFIFO is set, §4.5.3 (pro-rata with a FIFO-priority first fill).
// AlgoProRata with TopOfBookFIFO=true and AlgoProRataTobFifo both route
// here; the tag only decides how New constructs minQuantity/flag.
type proRataPolicy struct {
	minQuantity   domain.Quantity
	topOfBookFIFO bool
}

// usesSIMD is always false: pro-rata allocation must drain and examine
// every order at a crossing level regardless, so there's no incremental
// best-level polling loop for a vectorized pre-check to shortcut.
func (p *proRataPolicy) usesSIMD() bool { return false }

func (p *proRataPolicy) allocate(taker *domain.Order, level *orderbook.PriceLevel) []domain.Trade {
	orders := level.Drain()
	if len(orders) == 0 {
		return nil
	}
	var trades []domain.Trade

	startIdx := 0
	if p.topOfBookFIFO {
		first := orders[0]
		if first.Remaining().IsPositive() && taker.Remaining().IsPositive() {
			qty := minQty(taker.Remaining(), first.Remaining())
			if trade, filled := fillOne(taker, first, qty); filled {
				trades = append(trades, trade)
			}
		}
		startIdx = 1
	}

	trades = append(trades, allocateProRataOver(taker, orders[startIdx:], p.minQuantity)...)

	requeueSurvivors(level, orders)
	return trades
}

// allocateProRataOver distributes taker's current remaining across
// participants by their remaining quantity, gated by minQuantity
// eligibility, per spec.md §4.5.2 steps 2-6. It executes trades in place
// (mutating each order's atomic state) and returns them; callers are
// responsible for requeuing survivors afterward.
func allocateProRataOver(taker *domain.Order, participants []*domain.Order, minQuantity domain.Quantity) []domain.Trade {
	if len(participants) == 0 || !taker.Remaining().IsPositive() {
		return nil
	}
	quantityToFill := taker.Remaining().RawValue()

	eligible := make([]int, 0, len(participants))
	var eligibleTotal int64
	for i, o := range participants {
		if isEligible(o, minQuantity) {
			eligible = append(eligible, i)
			eligibleTotal += o.Remaining().RawValue()
		}
	}
	if len(eligible) == 0 || eligibleTotal == 0 {
		return nil
	}

	allocations := make(map[int]int64, len(eligible))
	var allocated int64
	for _, i := range eligible {
		amt, err := numeric.MulDivFloor(participants[i].Remaining().RawValue(), quantityToFill, eligibleTotal)
		if err != nil {
			continue
		}
		allocations[i] = amt
		allocated += amt
	}
	// Rounding remainder goes to the first eligible order in insertion
	// order (spec.md §4.5.2 step 4; for top-of-book FIFO this is the
	// second order overall, since participants already excludes the FIFO
	// winner — spec.md §4.5.3 step C).
	allocations[eligible[0]] += quantityToFill - allocated

	var trades []domain.Trade
	for _, i := range eligible {
		amt := allocations[i]
		if amt <= 0 {
			continue
		}
		qty := numeric.FromRaw[numeric.S9](amt)
		maker := participants[i]
		if qty.GreaterThan(maker.Remaining()) {
			// An allocation can exceed a stale aggregate-derived share;
			// clamp and let the residual roll to the next outer-loop
			// iteration (spec.md §4.5.2 step 6).
			qty = maker.Remaining()
		}
		trade, filled := fillOne(taker, maker, qty)
		if !filled {
			continue
		}
		trades = append(trades, trade)
	}
	return trades
}

// requeueSurvivors puts back, in original relative order, every order
// from the drained set that still has remaining quantity.
func requeueSurvivors(level *orderbook.PriceLevel, orders []*domain.Order) {
	survivors := orders[:0:0]
	for _, o := range orders {
		if o.Remaining().IsPositive() {
			survivors = append(survivors, o)
		}
	}
	level.Requeue(survivors)
}

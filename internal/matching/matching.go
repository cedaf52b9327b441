// Package matching implements the five allocation policies of spec.md
// §4.5 over the shared envelope they all use: pop the best level of the
// opposite order book side, apply a policy-specific allocation step, and
// repeat until the taker is filled or no further level crosses.
package matching

import (
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/orderbook"
	"github.com/orderflow/matchcore/internal/simd"
)

// Policy is the per-level allocation contract every matching algorithm
// implements. MatchOrder drives the shared outer loop and calls allocate
// once per crossing level.
type Policy interface {
	// allocate executes one policy-specific allocation step against the
	// given level for the given taker, returning the trades produced. It
	// must not be called unless the level's price already crosses the
	// taker's limit.
	allocate(taker *domain.Order, level *orderbook.PriceLevel) []domain.Trade

	// usesSIMD reports whether MatchOrder should run a vectorized
	// fast-rejection scan over every resting price before entering its
	// per-level loop (spec.md §4.4 "fast rejection test").
	usesSIMD() bool
}

// New builds the configured Policy from domain.MatchingAlgorithm
// (spec.md §9 "Polymorphism": a tagged-union dispatch, not an open
// interface hierarchy per algorithm family).
func New(cfg domain.MatchingAlgorithm) Policy {
	switch cfg.Kind {
	case domain.AlgoProRata:
		return &proRataPolicy{minQuantity: cfg.MinQuantity, topOfBookFIFO: cfg.TopOfBookFIFO}
	case domain.AlgoProRataTobFifo:
		return &proRataPolicy{minQuantity: cfg.MinQuantity, topOfBookFIFO: true}
	case domain.AlgoLMMPriority:
		return &lmmPriorityPolicy{
			minQuantity: cfg.MinQuantity,
			accounts:    cfg.LMMAccounts,
			allocationPct: cfg.LMMAllocationPct,
		}
	case domain.AlgoThresholdProRata:
		return &thresholdProRataPolicy{threshold: cfg.Threshold, minQuantity: cfg.MinQuantity}
	default:
		return &priceTimePolicy{useSIMD: cfg.UseSIMD}
	}
}

// MatchOrder runs the shared envelope of spec.md §4.5 against side for
// taker, returning every trade produced. The taker's own remaining/state
// are mutated in place via its atomic methods as usual.
func MatchOrder(taker *domain.Order, side *orderbook.Side, policy Policy) []domain.Trade {
	if policy.usesSIMD() && !anyPriceCrosses(taker, side) {
		return nil
	}

	var trades []domain.Trade
	for taker.Remaining().IsPositive() {
		level, ok := side.BestLevel()
		if !ok || !pricesCross(taker, level.Price()) {
			break
		}
		progress := taker.Remaining()
		levelTrades := policy.allocate(taker, level)
		trades = append(trades, levelTrades...)
		side.RemoveEmptyLevels()
		if taker.Remaining().Equal(progress) {
			break
		}
	}
	return trades
}

// PricesCrossUsingSIMD pre-checks whether taker could possibly cross any
// of candidatePrices (raw scaled values of resting levels) before the
// caller bothers walking the real book (spec.md §4.4 "Algorithmic role").
// A nonempty result is not a commitment; callers must still re-verify
// against live book state.
func PricesCrossUsingSIMD(taker *domain.Order, candidatePrices []int64) bool {
	if taker.Price == nil {
		return len(candidatePrices) > 0
	}
	raw := taker.Price.RawValue()
	if taker.Side == domain.SideBuy {
		return len(simd.FindCrossingBuyPrices(raw, candidatePrices)) > 0
	}
	return len(simd.FindCrossingSellPrices(raw, candidatePrices)) > 0
}

// anyPriceCrosses runs the SIMD pre-check across every resting price on
// side, used as a fast rejection before MatchOrder pays for repeated
// BestLevel() polling (spec.md §4.4).
func anyPriceCrosses(taker *domain.Order, side *orderbook.Side) bool {
	levels := side.Levels()
	if len(levels) == 0 {
		return false
	}
	prices := make([]int64, len(levels))
	for i, l := range levels {
		prices[i] = l.Price().RawValue()
	}
	return PricesCrossUsingSIMD(taker, prices)
}

func pricesCross(taker *domain.Order, bookPrice domain.Price) bool {
	if taker.Price == nil {
		// Market order: Buy treats its own price as +inf, Sell as 0 —
		// always crosses whatever is resting.
		return true
	}
	if taker.Side == domain.SideBuy {
		return taker.Price.GreaterThanOrEqual(bookPrice)
	}
	return taker.Price.LessThanOrEqual(bookPrice)
}

// fillOne executes one trade between taker and maker for quantity qty at
// maker's price, applying the CAS fills to both sides. Returns the trade
// and whether the fill actually landed — a maker CAS can legitimately
// fail if a concurrent cancel or fill already consumed it (spec.md §4.5
// "Common failure semantics"), in which case the caller must treat it as
// a zero-progress step and move on.
func fillOne(taker, maker *domain.Order, qty domain.Quantity) (domain.Trade, bool) {
	if qty.RawValue() <= 0 {
		return domain.Trade{}, false
	}
	if !maker.TryFill(qty) {
		return domain.Trade{}, false
	}
	// The taker-side CAS should not fail given the single-dispatcher
	// serialization of spec.md §5 (only one match_order runs per taker at
	// a time), but the maker-side reduction has already committed either
	// way, so the trade is recorded regardless.
	taker.TryFill(qty)
	return domain.NewTrade(taker.Instrument, maker.ID, taker.ID, *maker.Price, qty), true
}

func minQty(a, b domain.Quantity) domain.Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}

func isEligible(o *domain.Order, minQuantity domain.Quantity) bool {
	return o.Remaining().GreaterThanOrEqual(minQuantity)
}

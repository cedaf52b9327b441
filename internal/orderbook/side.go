package orderbook

import (
	"errors"
	"sort"
	"sync"

	"github.com/orderflow/matchcore/internal/domain"
)

// ErrNotRestable is returned by Add when the order cannot rest on a book
// side at all (market order, or a side/price mismatch).
var ErrNotRestable = errors.New("orderbook: order is not restable on this side")

// Side is the sorted ladder of price levels for one side (buy or sell) of
// one instrument. Levels are kept in an index sorted by priceRaw; for the
// buy side the best price is the maximum key, for the sell side the
// minimum (spec.md §3.4).
//
// No ordered-concurrent-map library in the example corpus fits this
// shape (see DESIGN.md), so the index is a plain sorted []int64 plus a
// map[int64]*PriceLevel guarded by a single sync.RWMutex: structural
// changes (inserting a new price, removing an empty one) take the write
// lock; best-price/depth reads take the read lock and never block each
// other. Match-path mutation *within* an already-existing level
// (PriceLevel's own queue) never touches this lock at all, which is where
// the actual match-path hot loop spends its time; Add pushes onto its
// level while still holding the write lock, so a concurrent sweep cannot
// remove that level in between.
type Side struct {
	side domain.Side

	mu     sync.RWMutex
	prices []int64 // sorted ascending
	levels map[int64]*PriceLevel
}

// NewSide constructs an empty book side.
func NewSide(side domain.Side) *Side {
	return &Side{
		side:   side,
		levels: make(map[int64]*PriceLevel),
	}
}

// Side reports which side (buy/sell) this ladder represents.
func (s *Side) Side() domain.Side { return s.side }

// Add rests order on this side. The caller must have already verified the
// order belongs to this side and carries a definite limit price; Add
// itself rejects anything that cannot rest (spec.md §4.3).
func (s *Side) Add(o *domain.Order) error {
	if !o.IsRestable() || o.Side != s.side {
		return ErrNotRestable
	}
	priceRaw := o.Price.RawValue()

	s.mu.Lock()
	level, ok := s.levels[priceRaw]
	if !ok {
		level = newPriceLevel(priceRaw)
		s.levels[priceRaw] = level
		s.insertPriceLocked(priceRaw)
	}
	level.PushBack(o)
	s.mu.Unlock()
	return nil
}

func (s *Side) insertPriceLocked(priceRaw int64) {
	idx := sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= priceRaw })
	s.prices = append(s.prices, 0)
	copy(s.prices[idx+1:], s.prices[idx:])
	s.prices[idx] = priceRaw
}

// bestIndexLocked returns the slice index of the best price for this side, or
// -1 if empty. Buy is the tail (max); sell is the head (min) of the
// ascending-sorted prices slice.
func (s *Side) bestIndexLocked() int {
	if len(s.prices) == 0 {
		return -1
	}
	if s.side == domain.SideBuy {
		return len(s.prices) - 1
	}
	return 0
}

// BestPrice returns the best resting price, if any.
func (s *Side) BestPrice() (domain.Price, bool) {
	level, ok := s.BestLevel()
	if !ok {
		return domain.Price{}, false
	}
	return level.Price(), true
}

// BestLevel returns the best-priced level, if any. Returned levels can be
// transiently empty; callers (matching policies) must check and sweep.
func (s *Side) BestLevel() (*PriceLevel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.bestIndexLocked()
	if idx < 0 {
		return nil, false
	}
	return s.levels[s.prices[idx]], true
}

// Get returns the level at an exact price, if one exists.
func (s *Side) Get(priceRaw int64) (*PriceLevel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.levels[priceRaw]
	return l, ok
}

// RemoveEmptyLevels sweeps levels whose queue is currently empty. Called
// by matchers after draining a level; tolerates a level being revived by
// a concurrent Add between the emptiness check and removal by re-checking
// emptiness under the write lock (spec.md §5).
func (s *Side) RemoveEmptyLevels() {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.prices[:0:0]
	for _, p := range s.prices {
		level := s.levels[p]
		if level.IsEmpty() {
			delete(s.levels, p)
			continue
		}
		kept = append(kept, p)
	}
	s.prices = kept
}

// Depth returns the top-N levels from the best side, in priority order,
// as (price, aggregate) pairs (spec.md §3.5).
func (s *Side) Depth(n int) []domain.LevelView {
	if n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LevelView, 0, n)
	if s.side == domain.SideBuy {
		for i := len(s.prices) - 1; i >= 0 && len(out) < n; i-- {
			out = append(out, s.levelView(s.prices[i]))
		}
	} else {
		for i := 0; i < len(s.prices) && len(out) < n; i++ {
			out = append(out, s.levelView(s.prices[i]))
		}
	}
	return out
}

func (s *Side) levelView(priceRaw int64) domain.LevelView {
	level := s.levels[priceRaw]
	return domain.LevelView{Price: level.Price(), Aggregate: level.Aggregate()}
}

// DepthVisible is Depth's Hybrid-order-book counterpart (spec.md §6.1):
// each level's aggregate is the sum of its orders' VisibleQuantity rather
// than their raw remaining quantity, and a level whose visible aggregate
// is zero (every resting order there is fully hidden) is omitted
// entirely rather than shown as an empty price.
func (s *Side) DepthVisible(n int) []domain.LevelView {
	if n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LevelView, 0, n)
	if s.side == domain.SideBuy {
		for i := len(s.prices) - 1; i >= 0 && len(out) < n; i-- {
			if lv, ok := s.visibleLevelView(s.prices[i]); ok {
				out = append(out, lv)
			}
		}
	} else {
		for i := 0; i < len(s.prices) && len(out) < n; i++ {
			if lv, ok := s.visibleLevelView(s.prices[i]); ok {
				out = append(out, lv)
			}
		}
	}
	return out
}

func (s *Side) visibleLevelView(priceRaw int64) (domain.LevelView, bool) {
	level := s.levels[priceRaw]
	visible := level.VisibleAggregate()
	if visible.IsZero() {
		return domain.LevelView{}, false
	}
	return domain.LevelView{Price: level.Price(), Aggregate: visible}, true
}

// Levels returns every level in priority order — used by MatchOrder's
// SIMD pre-check when the configured policy enables it.
func (s *Side) Levels() []*PriceLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PriceLevel, len(s.prices))
	if s.side == domain.SideBuy {
		for i, p := range s.prices {
			out[len(s.prices)-1-i] = s.levels[p]
		}
	} else {
		for i, p := range s.prices {
			out[i] = s.levels[p]
		}
	}
	return out
}

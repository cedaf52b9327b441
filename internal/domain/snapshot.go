package domain

// LevelView is one (price, aggregate quantity) entry of a depth ladder.
type LevelView struct {
	Price     Price
	Aggregate Quantity
}

// Snapshot is an immutable point-in-time view of both sides of the book,
// bounded to a caller-supplied depth (spec.md §3.5).
type Snapshot struct {
	Instrument string
	Bids       []LevelView // descending by price
	Asks       []LevelView // ascending by price
	Spread     *Price      // best-ask - best-bid, nil if either side is empty
	Mid        *Price      // (best-bid + best-ask)/2 truncated toward zero, nil if either side is empty
}

// BestBid returns the top of the bid ladder, if any.
func (s Snapshot) BestBid() (Price, bool) {
	if len(s.Bids) == 0 {
		return Price{}, false
	}
	return s.Bids[0].Price, true
}

// BestAsk returns the top of the ask ladder, if any.
func (s Snapshot) BestAsk() (Price, bool) {
	if len(s.Asks) == 0 {
		return Price{}, false
	}
	return s.Asks[0].Price, true
}

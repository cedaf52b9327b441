package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/orderflow/matchcore/internal/orderbook"
)

func mustPrice(t *testing.T, s string) domain.Price {
	t.Helper()
	p, err := numeric.FromString[numeric.S9](s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustQty(t *testing.T, s string) domain.Quantity {
	t.Helper()
	q, err := numeric.FromString[numeric.S9](s)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func restingOrder(t *testing.T, user string, side domain.Side, price, qty string) *domain.Order {
	t.Helper()
	p := mustPrice(t, price)
	o := domain.NewOrder(uuid.New(), user, "BTC-USD", side, domain.OrderTypeLimit, &p, mustQty(t, qty), domain.GoodTillCancel)
	o.Accept(1)
	return o
}

func takerOrder(t *testing.T, side domain.Side, price, qty string, tif domain.TimeInForce) *domain.Order {
	t.Helper()
	p := mustPrice(t, price)
	o := domain.NewOrder(uuid.New(), "taker", "BTC-USD", side, domain.OrderTypeLimit, &p, mustQty(t, qty), tif)
	o.Accept(2)
	return o
}

// S1 — FIFO priority.
func TestPriceTime_S1_FIFOPriority(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	first := restingOrder(t, "user1", domain.SideSell, "50000", "1")
	second := restingOrder(t, "user2", domain.SideSell, "50000", "1")
	side.Add(first)
	side.Add(second)

	taker := takerOrder(t, domain.SideBuy, "50000", "1", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime})
	trades := MatchOrder(taker, side, policy)

	if len(trades) != 1 {
		t.Fatalf("expected exactly one trade, got %d", len(trades))
	}
	if trades[0].MakerOrderID != first.ID {
		t.Fatalf("expected maker to be the first sell, got %v", trades[0].MakerOrderID)
	}
	if !taker.Remaining().IsZero() {
		t.Fatalf("expected taker fully filled, remaining=%v", taker.Remaining())
	}
	level, ok := side.BestLevel()
	if !ok {
		t.Fatal("expected the second sell to remain at that price")
	}
	if rest := level.Snapshot(); len(rest) != 1 || rest[0].ID != second.ID {
		t.Fatalf("expected only the second sell resting, got %+v", rest)
	}
}

// S2 — Partial fill with GTC resting.
func TestPriceTime_S2_PartialFillRests(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	side.Add(restingOrder(t, "maker", domain.SideSell, "50000", "1"))

	taker := takerOrder(t, domain.SideBuy, "50000", "2", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime})
	trades := MatchOrder(taker, side, policy)

	if len(trades) != 1 || trades[0].Quantity.String() != "1.000000000" {
		t.Fatalf("expected one trade of qty 1, got %+v", trades)
	}
	if taker.State() != domain.StatePartiallyFilled {
		t.Fatalf("expected taker PartiallyFilled, got %s", taker.State())
	}
	if taker.Remaining().String() != "1.000000000" {
		t.Fatalf("expected remaining 1, got %s", taker.Remaining())
	}
}

// S3 — IOC cancellation (no asks at all — engine-level TIF handling is
// exercised in internal/engine; here we confirm the policy produces zero
// trades when nothing crosses).
func TestPriceTime_S3_NoCrossProducesNoTrades(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	taker := takerOrder(t, domain.SideBuy, "50000", "5", domain.ImmediateOrCancel)
	policy := New(domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime})
	trades := MatchOrder(taker, side, policy)
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if taker.Remaining().String() != "5.000000000" {
		t.Fatalf("expected remaining unchanged, got %s", taker.Remaining())
	}
}

// S4 — Pro-rata allocation.
func TestProRata_S4_Allocation(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	side.Add(restingOrder(t, "user1", domain.SideSell, "50000", "10"))
	side.Add(restingOrder(t, "user2", domain.SideSell, "50000", "20"))

	taker := takerOrder(t, domain.SideBuy, "50000", "15", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{Kind: domain.AlgoProRata})
	trades := MatchOrder(taker, side, policy)

	var total int64
	for _, tr := range trades {
		total += tr.Quantity.RawValue()
	}
	if total != mustQty(t, "15").RawValue() {
		t.Fatalf("expected total fill 15, got %d", total)
	}
	if len(trades) != 2 {
		t.Fatalf("expected two trades, got %d: %+v", len(trades), trades)
	}
	// floor(15*10/30)=5, floor(15*20/30)=10, exact, no remainder to award.
	want := map[string]int64{"5": mustQty(t, "5").RawValue(), "10": mustQty(t, "10").RawValue()}
	got := map[int64]bool{}
	for _, tr := range trades {
		got[tr.Quantity.RawValue()] = true
	}
	for _, w := range want {
		if !got[w] {
			t.Fatalf("expected a trade of size %d among %+v", w, trades)
		}
	}
	// Residuals 10-5=5 and 20-10=10 stay resting at 50000.
	level, ok := side.BestLevel()
	if !ok || level.Aggregate().RawValue() != mustQty(t, "15").RawValue() {
		t.Fatalf("expected residual 15 resting at 50000, got ok=%v", ok)
	}
}

// S5 — LMM priority.
func TestLMMPriority_S5(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	mm1 := restingOrder(t, "mm1", domain.SideSell, "50000", "100")
	user1 := restingOrder(t, "user1", domain.SideSell, "50000", "150")
	mm2 := restingOrder(t, "mm2", domain.SideSell, "50000", "50")
	user2 := restingOrder(t, "user2", domain.SideSell, "50000", "200")
	side.Add(mm1)
	side.Add(user1)
	side.Add(mm2)
	side.Add(user2)

	taker := takerOrder(t, domain.SideBuy, "50000", "200", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{
		Kind:             domain.AlgoLMMPriority,
		MinQuantity:      mustQty(t, "10"),
		LMMAccounts:      map[string]struct{}{"mm1": {}, "mm2": {}},
		LMMAllocationPct: mustPrice(t, "0.4"),
	})
	trades := MatchOrder(taker, side, policy)

	var total, mmTotal int64
	perMaker := map[uuid.UUID]int64{}
	for _, tr := range trades {
		total += tr.Quantity.RawValue()
		perMaker[tr.MakerOrderID] += tr.Quantity.RawValue()
	}
	mmTotal = perMaker[mm1.ID] + perMaker[mm2.ID]

	if total != mustQty(t, "200").RawValue() {
		t.Fatalf("expected total filled 200, got %d", total)
	}
	if mmTotal < mustQty(t, "80").RawValue() {
		t.Fatalf("expected mm1+mm2 >= 80, got %d", mmTotal)
	}
	for _, id := range []uuid.UUID{mm1.ID, user1.ID, mm2.ID, user2.ID} {
		if perMaker[id] <= 0 {
			t.Fatalf("expected order %v to receive a nonzero allocation", id)
		}
	}
}

// S6 — Threshold protection.
func TestThresholdProRata_S6(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	small1 := restingOrder(t, "small1", domain.SideSell, "50000", "10")
	small2 := restingOrder(t, "small2", domain.SideSell, "50000", "20")
	small3 := restingOrder(t, "small3", domain.SideSell, "50000", "30")
	side.Add(small1)
	side.Add(small2)
	side.Add(small3)

	taker := takerOrder(t, domain.SideBuy, "50000", "40", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{
		Kind:        domain.AlgoThresholdProRata,
		Threshold:   mustQty(t, "50"),
		MinQuantity: mustQty(t, "0"),
	})
	trades := MatchOrder(taker, side, policy)

	perMaker := map[uuid.UUID]int64{}
	for _, tr := range trades {
		perMaker[tr.MakerOrderID] += tr.Quantity.RawValue()
	}
	if perMaker[small1.ID] != mustQty(t, "10").RawValue() {
		t.Fatalf("expected small1 filled 10, got %d", perMaker[small1.ID])
	}
	if perMaker[small2.ID] != mustQty(t, "20").RawValue() {
		t.Fatalf("expected small2 filled 20, got %d", perMaker[small2.ID])
	}
	if perMaker[small3.ID] != mustQty(t, "10").RawValue() {
		t.Fatalf("expected small3 filled 10, got %d", perMaker[small3.ID])
	}
}

func TestForwardProgressGuard_StopsOnZeroProgress(t *testing.T) {
	side := orderbook.NewSide(domain.SideSell)
	// A level whose aggregate is nonzero but queue drained empty by the
	// test itself simulates the transient inconsistency spec.md §9
	// documents; MatchOrder must not spin.
	maker := restingOrder(t, "maker", domain.SideSell, "50000", "1")
	side.Add(maker)
	level, _ := side.Get(mustPrice(t, "50000").RawValue())
	level.Drain() // empties the queue but leaves BestLevel() resolvable this step

	taker := takerOrder(t, domain.SideBuy, "50000", "5", domain.GoodTillCancel)
	policy := New(domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime})
	trades := MatchOrder(taker, side, policy)
	if len(trades) != 0 {
		t.Fatalf("expected no trades against an emptied level, got %d", len(trades))
	}
}

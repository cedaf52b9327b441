package domain

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/numeric"
)

func mustQty(t *testing.T, s string) Quantity {
	t.Helper()
	q, err := numeric.FromString[numeric.S9](s)
	if err != nil {
		t.Fatalf("qty %q: %v", s, err)
	}
	return q
}

func mustPrice(t *testing.T, s string) *Price {
	t.Helper()
	p, err := numeric.FromString[numeric.S9](s)
	if err != nil {
		t.Fatalf("price %q: %v", s, err)
	}
	return &p
}

func newTestOrder(t *testing.T, qty string) *Order {
	t.Helper()
	return NewOrder(uuid.New(), "user1", "BTC-USD", SideBuy, OrderTypeLimit, mustPrice(t, "100"), mustQty(t, qty), GoodTillCancel)
}

func TestOrder_Invariants(t *testing.T) {
	o := newTestOrder(t, "10")
	o.Accept(1)

	if !o.TryFill(mustQty(t, "4")) {
		t.Fatal("fill should succeed")
	}
	if o.State() != StatePartiallyFilled {
		t.Fatalf("expected PartiallyFilled, got %s", o.State())
	}
	if got := o.Filled().RawValue() + o.Remaining().RawValue(); got != o.OriginalQty.RawValue() {
		t.Fatalf("filled+remaining != original: %d", got)
	}

	if !o.TryFill(mustQty(t, "6")) {
		t.Fatal("final fill should succeed")
	}
	if o.State() != StateFilled {
		t.Fatalf("expected Filled, got %s", o.State())
	}
	if o.Remaining().RawValue() != 0 {
		t.Fatalf("expected 0 remaining, got %s", o.Remaining())
	}
}

func TestOrder_TryFill_RejectsOverdraw(t *testing.T) {
	o := newTestOrder(t, "5")
	o.Accept(1)
	if o.TryFill(mustQty(t, "6")) {
		t.Fatal("fill exceeding remaining should fail")
	}
}

func TestOrder_TryCancel_Idempotent(t *testing.T) {
	o := newTestOrder(t, "5")
	o.Accept(1)
	if !o.TryCancel() {
		t.Fatal("first cancel should succeed")
	}
	if o.TryCancel() {
		t.Fatal("second cancel should fail")
	}
}

func TestOrder_TryCancel_FailsAfterFilled(t *testing.T) {
	o := newTestOrder(t, "5")
	o.Accept(1)
	if !o.TryFill(mustQty(t, "5")) {
		t.Fatal("fill should succeed")
	}
	if o.TryCancel() {
		t.Fatal("cancel of a fully filled order should fail")
	}
}

func TestOrder_IllegalTransitionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on illegal transition")
		}
	}()
	o := newTestOrder(t, "5")
	o.Reject()
	o.Accept(1) // Rejected -> Accepted is illegal
}

func TestOrder_VisibleQuantity(t *testing.T) {
	o := newTestOrder(t, "10")
	o.Accept(1)
	if got := o.VisibleQuantity(); !got.Equal(mustQty(t, "10")) {
		t.Fatalf("expected full remaining visible, got %s", got)
	}

	disp := mustQty(t, "3")
	o.DisplayQty = &disp
	if got := o.VisibleQuantity(); !got.Equal(disp) {
		t.Fatalf("expected display-capped visible quantity, got %s", got)
	}

	o.Visible = false
	if got := o.VisibleQuantity(); !got.IsZero() {
		t.Fatalf("expected 0 for hidden order, got %s", got)
	}
}

func TestOrder_ConcurrentFillAndCancel(t *testing.T) {
	o := newTestOrder(t, "1000")
	o.Accept(1)

	var wg sync.WaitGroup
	unit := mustQty(t, "1")
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.TryFill(unit)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.TryCancel()
	}()
	wg.Wait()

	if got := o.Filled().RawValue() + o.Remaining().RawValue(); got != o.OriginalQty.RawValue() {
		t.Fatalf("invariant broken under concurrency: filled+remaining=%d want %d", got, o.OriginalQty.RawValue())
	}
	if o.Remaining().IsNegative() {
		t.Fatal("remaining went negative")
	}
}

func TestValidateOrder(t *testing.T) {
	cfg := Config{Instrument: "BTC-USD", OrderBookType: Transparent, MatchingAlgorithm: MatchingAlgorithm{Kind: AlgoPriceTime}}

	zero := newTestOrder(t, "0")
	if err := ValidateOrder(zero, cfg); err != ErrNonPositiveQuantity {
		t.Fatalf("expected ErrNonPositiveQuantity, got %v", err)
	}

	noPrice := NewOrder(uuid.New(), "u", "BTC-USD", SideBuy, OrderTypeLimit, nil, mustQty(t, "1"), GoodTillCancel)
	if err := ValidateOrder(noPrice, cfg); err != ErrLimitWithoutPrice {
		t.Fatalf("expected ErrLimitWithoutPrice, got %v", err)
	}

	marketGTC := NewOrder(uuid.New(), "u", "BTC-USD", SideBuy, OrderTypeMarket, nil, mustQty(t, "1"), GoodTillCancel)
	if err := ValidateOrder(marketGTC, cfg); err != ErrMarketOrderGTC {
		t.Fatalf("expected ErrMarketOrderGTC, got %v", err)
	}

	ok := newTestOrder(t, "1")
	if err := ValidateOrder(ok, cfg); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}
}

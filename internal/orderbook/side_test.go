package orderbook

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
)

func mkOrder(t *testing.T, side domain.Side, price, qty string) *domain.Order {
	t.Helper()
	p, err := numeric.FromString[numeric.S9](price)
	if err != nil {
		t.Fatal(err)
	}
	q, err := numeric.FromString[numeric.S9](qty)
	if err != nil {
		t.Fatal(err)
	}
	o := domain.NewOrder(uuid.New(), "u", "BTC-USD", side, domain.OrderTypeLimit, &p, q, domain.GoodTillCancel)
	o.Accept(1)
	return o
}

func TestSide_BestPrice_BuyIsMax(t *testing.T) {
	s := NewSide(domain.SideBuy)
	if err := s.Add(mkOrder(t, domain.SideBuy, "100", "1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(mkOrder(t, domain.SideBuy, "105", "1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(mkOrder(t, domain.SideBuy, "95", "1")); err != nil {
		t.Fatal(err)
	}
	best, ok := s.BestPrice()
	if !ok || best.String() != "105.000000000" {
		t.Fatalf("expected best 105, got %v ok=%v", best, ok)
	}
}

func TestSide_BestPrice_SellIsMin(t *testing.T) {
	s := NewSide(domain.SideSell)
	for _, p := range []string{"100", "105", "95"} {
		if err := s.Add(mkOrder(t, domain.SideSell, p, "1")); err != nil {
			t.Fatal(err)
		}
	}
	best, ok := s.BestPrice()
	if !ok || best.String() != "95.000000000" {
		t.Fatalf("expected best 95, got %v ok=%v", best, ok)
	}
}

func TestSide_Depth(t *testing.T) {
	s := NewSide(domain.SideBuy)
	s.Add(mkOrder(t, domain.SideBuy, "100", "1"))
	s.Add(mkOrder(t, domain.SideBuy, "100", "2"))
	s.Add(mkOrder(t, domain.SideBuy, "99", "5"))

	depth := s.Depth(5)
	if len(depth) != 2 {
		t.Fatalf("expected 2 price levels, got %d", len(depth))
	}
	if depth[0].Price.String() != "100.000000000" || depth[0].Aggregate.String() != "3.000000000" {
		t.Fatalf("unexpected top level: %+v", depth[0])
	}
	if depth[1].Price.String() != "99.000000000" || depth[1].Aggregate.String() != "5.000000000" {
		t.Fatalf("unexpected second level: %+v", depth[1])
	}
}

func TestSide_RemoveEmptyLevels(t *testing.T) {
	s := NewSide(domain.SideBuy)
	s.Add(mkOrder(t, domain.SideBuy, "100", "1"))
	level, _ := s.Get(numericRaw(t, "100"))
	level.Drain()
	s.RemoveEmptyLevels()
	if _, ok := s.BestPrice(); ok {
		t.Fatal("expected no levels left after sweep")
	}
}

func numericRaw(t *testing.T, s string) int64 {
	t.Helper()
	p, err := numeric.FromString[numeric.S9](s)
	if err != nil {
		t.Fatal(err)
	}
	return p.RawValue()
}

func TestSide_ConcurrentAddsAndReads(t *testing.T) {
	s := NewSide(domain.SideBuy)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price := "100"
			if i%2 == 0 {
				price = "101"
			}
			s.Add(mkOrder(t, domain.SideBuy, price, "1"))
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Depth(5)
			s.BestPrice()
		}()
	}
	wg.Wait()

	depth := s.Depth(5)
	total := int64(0)
	for _, l := range depth {
		total += l.Aggregate.RawValue()
	}
	if total != 200_000_000_000 { // 200 orders * 1.0 at scale 1e9
		t.Fatalf("expected total aggregate 200e9, got %d", total)
	}
}

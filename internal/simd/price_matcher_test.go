package simd

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestFindCrossingBuyPrices_Basic(t *testing.T) {
	asks := []int64{100, 101, 102, 103, 105}
	got := FindCrossingBuyPrices(102, asks)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFindCrossingSellPrices_Basic(t *testing.T) {
	bids := []int64{105, 103, 102, 101, 100}
	got := FindCrossingSellPrices(102, bids)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFindCrossing_Empty(t *testing.T) {
	if got := FindCrossingBuyPrices(100, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestSIMD_Agreement is the bit-identical-output check spec.md §8 calls
// for: every lane-width implementation must return the exact same index
// set as scalar on the same random input, across sizes that land on both
// sides of every lane boundary (1,2,4,8).
func TestSIMD_Agreement(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	impls := []Implementation{Scalar, NEON, AVX2, AVX512}

	for _, n := range []int{0, 1, 2, 3, 4, 7, 8, 9, 16, 17, 100, 257} {
		prices := make([]int64, n)
		for i := range prices {
			prices[i] = int64(rng.Intn(1000))
		}
		pivot := int64(rng.Intn(1000))

		var reference []int
		for _, impl := range impls {
			got := findCrossingWith(impl, prices, func(p int64) bool { return pivot >= p })
			if impl == Scalar {
				reference = got
				continue
			}
			if !reflect.DeepEqual(got, reference) {
				t.Fatalf("n=%d impl=%s disagrees with scalar: got %v want %v", n, impl, got, reference)
			}
		}
	}
}

func TestImplementation_String(t *testing.T) {
	cases := map[Implementation]string{
		Scalar: "scalar", NEON: "neon", AVX2: "avx2", AVX512: "avx512", Implementation(99): "unknown",
	}
	for impl, want := range cases {
		if got := impl.String(); got != want {
			t.Fatalf("impl %d: got %q want %q", int(impl), got, want)
		}
	}
}

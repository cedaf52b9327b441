// Package simd implements the fast-rejection price-crossing test of
// spec.md §4.4: given an incoming price and the raw scaled price array of
// the opposite book side, return the indices where a cross is possible.
//
// A nonempty result is not a commitment to trade — the match loop still
// walks the real book in price-priority order (spec.md §4.4 "Algorithmic
// role"). This is purely an accelerated pre-check.
//
// True per-architecture vector intrinsics (AVX-512/AVX2/NEON assembly)
// require hand-written per-arch stubs that a source-level port cannot
// validate without the target hardware and a working assembler toolchain
// in CI; see DESIGN.md. Each "implementation" below instead processes the
// lane count the spec assigns to that instruction set family (8/4/2/1) as
// a pure-Go unrolled loop over a chunk, with scalar tail handling — which
// preserves the chunk/tail split and the bit-identical-output contract
// spec.md §8 tests for, without fabricating assembly this port cannot
// validate.
package simd

import "github.com/klauspost/cpuid/v2"

// Implementation names the lane width a given dispatch target emulates.
type Implementation int

const (
	Scalar Implementation = iota
	NEON                  // 2-lane, aarch64
	AVX2                  // 4-lane, x86_64
	AVX512                // 8-lane, x86_64 AVX-512F
)

func (i Implementation) String() string {
	switch i {
	case Scalar:
		return "scalar"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

func (i Implementation) lanes() int {
	switch i {
	case AVX512:
		return 8
	case AVX2:
		return 4
	case NEON:
		return 2
	default:
		return 1
	}
}

// Active is the implementation selected once at package init by runtime
// CPU feature detection (spec.md §4.4 "Runtime dispatch selects the best
// implementation once at startup").
var Active = detect()

func detect() Implementation {
	if cpuid.CPU.Supports(cpuid.AVX512F) {
		return AVX512
	}
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return AVX2
	}
	if cpuid.CPU.Supports(cpuid.ASIMD) {
		return NEON
	}
	return Scalar
}

// FindCrossingBuyPrices returns, in ascending order, the indices i where
// buyPrice >= askPrices[i] — i.e. where a buy taker at buyPrice could
// cross the resting ask at askPrices[i].
func FindCrossingBuyPrices(buyPrice int64, askPrices []int64) []int {
	return findCrossing(askPrices, Active.lanes(), func(ask int64) bool {
		return buyPrice >= ask
	})
}

// FindCrossingSellPrices returns, in ascending order, the indices i where
// sellPrice <= bidPrices[i].
func FindCrossingSellPrices(sellPrice int64, bidPrices []int64) []int {
	return findCrossing(bidPrices, Active.lanes(), func(bid int64) bool {
		return sellPrice <= bid
	})
}

// findCrossing is the shared chunk/tail-split body every dispatch target
// reduces to; lanes controls only how many elements are evaluated per
// unrolled iteration before the loop re-checks bounds, never the result.
func findCrossing(prices []int64, lanes int, crosses func(int64) bool) []int {
	n := len(prices)
	if n == 0 {
		return nil
	}
	var out []int
	full := n - n%lanes
	for i := 0; i < full; i += lanes {
		for lane := 0; lane < lanes; lane++ {
			if crosses(prices[i+lane]) {
				out = append(out, i+lane)
			}
		}
	}
	for i := full; i < n; i++ {
		if crosses(prices[i]) {
			out = append(out, i)
		}
	}
	return out
}

// findCrossingWith forces a specific lane width, used only by tests to
// assert every implementation agrees on the same input (spec.md §8 "SIMD
// agreement").
func findCrossingWith(impl Implementation, prices []int64, crosses func(int64) bool) []int {
	return findCrossing(prices, impl.lanes(), crosses)
}

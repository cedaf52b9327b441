package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// FixedDecimal is a signed, scaled 64-bit integer representing value ×
// 10^D, where D is fixed by the zero-size marker type S. All ordering,
// equality, and hashing are defined on the raw integer, which gives a
// total order consistent with numeric order. Two FixedDecimal[S] values
// are only combinable with each other; mixing scales is a compile error
// (generic instantiation), not a runtime ErrScaleMismatch. Changing scale
// goes through ConvertScale.
type FixedDecimal[S Scale] struct {
	raw int64
}

// Price and Quantity are the two domain aliases spec.md names, both at the
// default scale D=9.
type Price = FixedDecimal[S9]
type Quantity = FixedDecimal[S9]

// Zero returns the additive identity at scale S.
func Zero[S Scale]() FixedDecimal[S] {
	return FixedDecimal[S]{}
}

// FromRaw wraps an already-scaled integer. Used internally by the order
// book and SIMD matcher, which operate on raw values directly.
func FromRaw[S Scale](raw int64) FixedDecimal[S] {
	return FixedDecimal[S]{raw: raw}
}

// FromInteger scales a whole number by 10^D.
func FromInteger[S Scale](i int64) (FixedDecimal[S], error) {
	exp := scaleOf[S]().Exp()
	raw, err := checkedMulInt64(i, exp)
	if err != nil {
		return FixedDecimal[S]{}, err
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// FromParts builds a value from an integer part and a fractional part
// expressed as D digits (e.g. FromParts[S9](1, 500_000_000) == 1.5). The
// sign is taken from intPart; fracPart must be non-negative and less than
// 10^D.
func FromParts[S Scale](intPart int64, fracPart int64) (FixedDecimal[S], error) {
	exp := scaleOf[S]().Exp()
	if fracPart < 0 || fracPart >= exp {
		return FixedDecimal[S]{}, fmt.Errorf("%w: fractional part %d out of [0,%d)", ErrInvalidInput, fracPart, exp)
	}
	whole, err := checkedMulInt64(intPart, exp)
	if err != nil {
		return FixedDecimal[S]{}, err
	}
	if intPart < 0 {
		fracPart = -fracPart
	}
	raw, ok := addOverflow(whole, fracPart)
	if !ok {
		return FixedDecimal[S]{}, ErrOverflow
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// FromString parses a decimal literal with an optional leading '-'. A
// literal carrying more fractional digits than D is rejected with
// ErrPrecisionLoss rather than silently truncated.
func FromString[S Scale](s string) (FixedDecimal[S], error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" {
		return FixedDecimal[S]{}, fmt.Errorf("%w: empty literal %q", ErrInvalidInput, orig)
	}

	intStr, fracStr, hasFrac := strings.Cut(s, ".")
	if intStr == "" {
		return FixedDecimal[S]{}, fmt.Errorf("%w: %q", ErrInvalidInput, orig)
	}
	for _, r := range intStr {
		if r < '0' || r > '9' {
			return FixedDecimal[S]{}, fmt.Errorf("%w: %q", ErrInvalidInput, orig)
		}
	}
	digits := scaleOf[S]().Digits()
	if hasFrac {
		if fracStr == "" {
			return FixedDecimal[S]{}, fmt.Errorf("%w: %q", ErrInvalidInput, orig)
		}
		for _, r := range fracStr {
			if r < '0' || r > '9' {
				return FixedDecimal[S]{}, fmt.Errorf("%w: %q", ErrInvalidInput, orig)
			}
		}
		if len(fracStr) > digits {
			return FixedDecimal[S]{}, fmt.Errorf("%w: %q carries more than %d fractional digits", ErrPrecisionLoss, orig, digits)
		}
	}

	intVal, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		return FixedDecimal[S]{}, fmt.Errorf("%w: %q: %v", ErrInvalidInput, orig, err)
	}
	fracVal := int64(0)
	if hasFrac {
		padded := fracStr + strings.Repeat("0", digits-len(fracStr))
		fracVal, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return FixedDecimal[S]{}, fmt.Errorf("%w: %q: %v", ErrInvalidInput, orig, err)
		}
	}

	exp := scaleOf[S]().Exp()
	whole, err := checkedMulInt64(intVal, exp)
	if err != nil {
		return FixedDecimal[S]{}, err
	}
	raw, ok := addOverflow(whole, fracVal)
	if !ok {
		return FixedDecimal[S]{}, ErrOverflow
	}
	if neg {
		raw = -raw
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// RawValue exposes the scaled int64, used by the SIMD matcher and level
// aggregate accumulators.
func (d FixedDecimal[S]) RawValue() int64 { return d.raw }

func (d FixedDecimal[S]) IsZero() bool     { return d.raw == 0 }
func (d FixedDecimal[S]) IsNegative() bool { return d.raw < 0 }
func (d FixedDecimal[S]) IsPositive() bool { return d.raw > 0 }

func (d FixedDecimal[S]) Sign() int {
	switch {
	case d.raw > 0:
		return 1
	case d.raw < 0:
		return -1
	default:
		return 0
	}
}

func (d FixedDecimal[S]) Equal(o FixedDecimal[S]) bool    { return d.raw == o.raw }
func (d FixedDecimal[S]) LessThan(o FixedDecimal[S]) bool { return d.raw < o.raw }
func (d FixedDecimal[S]) GreaterThan(o FixedDecimal[S]) bool {
	return d.raw > o.raw
}
func (d FixedDecimal[S]) LessThanOrEqual(o FixedDecimal[S]) bool {
	return d.raw <= o.raw
}
func (d FixedDecimal[S]) GreaterThanOrEqual(o FixedDecimal[S]) bool {
	return d.raw >= o.raw
}

// Cmp gives a total order: -1, 0, 1.
func (d FixedDecimal[S]) Cmp(o FixedDecimal[S]) int {
	switch {
	case d.raw < o.raw:
		return -1
	case d.raw > o.raw:
		return 1
	default:
		return 0
	}
}

// CheckedAdd returns ErrOverflow/ErrUnderflow on int64 range violation.
func (d FixedDecimal[S]) CheckedAdd(o FixedDecimal[S]) (FixedDecimal[S], error) {
	raw, ok := addOverflow(d.raw, o.raw)
	if !ok {
		if o.raw > 0 {
			return FixedDecimal[S]{}, ErrOverflow
		}
		return FixedDecimal[S]{}, ErrUnderflow
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// CheckedSub returns ErrOverflow/ErrUnderflow on int64 range violation.
func (d FixedDecimal[S]) CheckedSub(o FixedDecimal[S]) (FixedDecimal[S], error) {
	if o.raw == math.MinInt64 {
		// -o.raw would itself overflow; only representable if d.raw is
		// also MinInt64, which subtracts to zero.
		if d.raw == math.MinInt64 {
			return FixedDecimal[S]{}, nil
		}
		return FixedDecimal[S]{}, ErrOverflow
	}
	raw, ok := addOverflow(d.raw, -o.raw)
	if !ok {
		if -o.raw > 0 {
			return FixedDecimal[S]{}, ErrOverflow
		}
		return FixedDecimal[S]{}, ErrUnderflow
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// CheckedMul multiplies two same-scale values using a 128-bit-class
// intermediate (via uint256.Int, since Go has no native int128) and rounds
// half-away-from-zero back to D digits, per spec.md §4.1:
//
//	product_128 = a·b
//	rounded = product_128 + sign(product_128)·(10^D/2)
//	result = rounded / 10^D
func (d FixedDecimal[S]) CheckedMul(o FixedDecimal[S]) (FixedDecimal[S], error) {
	exp := scaleOf[S]().Exp()
	raw, err := mulRoundRescale(d.raw, o.raw, exp)
	if err != nil {
		return FixedDecimal[S]{}, err
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// CheckedMulInt multiplies by a plain (unscaled) integer; no rescale is
// needed since the scale of the result matches the scale of d.
func (d FixedDecimal[S]) CheckedMulInt(i int64) (FixedDecimal[S], error) {
	raw, err := checkedMulInt64(d.raw, i)
	if err != nil {
		return FixedDecimal[S]{}, err
	}
	return FixedDecimal[S]{raw: raw}, nil
}

// CheckedDivInt divides by a plain integer, truncating toward zero.
// ErrDivisionByZero if i == 0.
func (d FixedDecimal[S]) CheckedDivInt(i int64) (FixedDecimal[S], error) {
	if i == 0 {
		return FixedDecimal[S]{}, ErrDivisionByZero
	}
	if d.raw == math.MinInt64 && i == -1 {
		return FixedDecimal[S]{}, ErrOverflow
	}
	return FixedDecimal[S]{raw: d.raw / i}, nil
}

// Neg returns -d. Only overflows for MinInt64, which has no positive
// counterpart in int64.
func (d FixedDecimal[S]) Neg() (FixedDecimal[S], error) {
	if d.raw == math.MinInt64 {
		return FixedDecimal[S]{}, ErrOverflow
	}
	return FixedDecimal[S]{raw: -d.raw}, nil
}

// Abs returns |d|.
func (d FixedDecimal[S]) Abs() (FixedDecimal[S], error) {
	if d.raw < 0 {
		return d.Neg()
	}
	return d, nil
}

// String formats the value as a decimal literal with exactly D fractional
// digits (D=0 omits the decimal point).
func (d FixedDecimal[S]) String() string {
	digits := scaleOf[S]().Digits()
	if digits == 0 {
		return strconv.FormatInt(d.raw, 10)
	}
	exp := scaleOf[S]().Exp()
	neg := d.raw < 0
	abs := d.raw
	if neg {
		abs = -abs
	}
	whole := abs / exp
	frac := abs % exp
	sign := ""
	if neg {
		sign = "-"
	}
	fracStr := strconv.FormatInt(frac, 10)
	fracStr = strings.Repeat("0", digits-len(fracStr)) + fracStr
	return fmt.Sprintf("%s%d.%s", sign, whole, fracStr)
}

// --- unexported checked-arithmetic helpers ---

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func checkedMulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a {
		return 0, ErrOverflow
	}
	return p, nil
}

// mulRoundRescale computes round_half_away_from_zero(a*b / exp) using a
// 256-bit-wide unsigned intermediate to hold the full 128-bit product
// without truncation, per spec.md's "128-bit intermediate" requirement.
func mulRoundRescale(a, b, exp int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	neg := (a < 0) != (b < 0)
	ua, ub := absU64(a), absU64(b)

	product := new(uint256.Int).Mul(uint256.NewInt(ua), uint256.NewInt(ub))
	half := uint256.NewInt(uint64(exp) / 2)
	product.Add(product, half)

	expU := uint256.NewInt(uint64(exp))
	quotient := new(uint256.Int).Div(product, expU)

	if !quotient.IsUint64() {
		return 0, ErrOverflow
	}
	uq := quotient.Uint64()
	if neg {
		if uq > uint64(math.MaxInt64)+1 {
			return 0, ErrOverflow
		}
		return -int64(uq), nil
	}
	if uq > uint64(math.MaxInt64) {
		return 0, ErrOverflow
	}
	return int64(uq), nil
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// ConvertScale rescales d from SFrom to STo, the explicit scale
// conversion (it never returns ErrScaleMismatch): two
// FixedDecimal values of different scales can never be combined directly
// (that's a compile error, since they're different generic
// instantiations), so a call site that genuinely needs to change scale —
// e.g. reporting a S9 notional at S6 micro-unit precision — goes through
// here instead. Widening (STo has more digits) is exact; narrowing rounds
// half away from zero and can lose precision silently, same as
// CheckedMul's rescale.
func ConvertScale[SFrom, STo Scale](d FixedDecimal[SFrom]) (FixedDecimal[STo], error) {
	fromExp := scaleOf[SFrom]().Exp()
	toExp := scaleOf[STo]().Exp()
	if fromExp == toExp {
		return FixedDecimal[STo]{raw: d.raw}, nil
	}
	if toExp > fromExp {
		raw, err := checkedMulInt64(d.raw, toExp/fromExp)
		if err != nil {
			return FixedDecimal[STo]{}, err
		}
		return FixedDecimal[STo]{raw: raw}, nil
	}

	ratio := fromExp / toExp
	if d.raw == math.MinInt64 {
		return FixedDecimal[STo]{}, ErrOverflow
	}
	neg := d.raw < 0
	abs := d.raw
	if neg {
		abs = -abs
	}
	rounded := (abs + ratio/2) / ratio
	if neg {
		rounded = -rounded
	}
	return FixedDecimal[STo]{raw: rounded}, nil
}

// MulDivFloor computes floor(a*b/c) for non-negative a, b, c using the
// same wide intermediate as CheckedMul, used by the pro-rata allocation
// formulas in internal/matching (allocation = floor(r·q/total)). c must be
// positive; a and b must be non-negative (remainders and quantities to
// fill are never negative in this engine).
func MulDivFloor(a, b, c int64) (int64, error) {
	if c <= 0 {
		return 0, ErrDivisionByZero
	}
	if a < 0 || b < 0 {
		return 0, ErrInvalidInput
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	quotient := new(uint256.Int).Div(product, uint256.NewInt(uint64(c)))
	if !quotient.IsUint64() || quotient.Uint64() > uint64(math.MaxInt64) {
		return 0, ErrOverflow
	}
	return int64(quotient.Uint64()), nil
}

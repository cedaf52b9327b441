package domain

import (
	"fmt"

	"github.com/orderflow/matchcore/internal/numeric"
	"go.uber.org/multierr"
)

// OrderBookType controls what snapshot() reveals to external observers
// (spec.md §6.1). Enforcement happens entirely at snapshot time; the
// underlying book is always fully maintained regardless of visibility.
type OrderBookType int8

const (
	Transparent OrderBookType = iota
	DarkPool
	Hybrid
)

func (t OrderBookType) String() string {
	switch t {
	case Transparent:
		return "Transparent"
	case DarkPool:
		return "DarkPool"
	case Hybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}

// AlgorithmKind tags which matching policy a MatchingAlgorithm value
// configures. MatchingAlgorithm is a flat tagged-union struct (spec.md §9
// "Polymorphism": tagged variants are an explicitly sanctioned choice) —
// only the fields relevant to Kind are meaningful for a given value.
type AlgorithmKind int8

const (
	AlgoPriceTime AlgorithmKind = iota
	AlgoProRata
	AlgoProRataTobFifo
	AlgoLMMPriority
	AlgoThresholdProRata
)

func (k AlgorithmKind) String() string {
	switch k {
	case AlgoPriceTime:
		return "PriceTime"
	case AlgoProRata:
		return "ProRata"
	case AlgoProRataTobFifo:
		return "ProRataTobFifo"
	case AlgoLMMPriority:
		return "LmmPriority"
	case AlgoThresholdProRata:
		return "ThresholdProRata"
	default:
		return "Unknown"
	}
}

// MatchingAlgorithm configures one of the five policies in spec.md §4.5.
type MatchingAlgorithm struct {
	Kind AlgorithmKind

	// PriceTime
	UseSIMD bool

	// ProRata, ProRataTobFifo, LmmPriority, ThresholdProRata
	MinQuantity Quantity

	// ProRata
	TopOfBookFIFO bool

	// LmmPriority
	LMMAccounts      map[string]struct{}
	LMMAllocationPct Price // fraction in [0,1], not a percentage

	// ThresholdProRata
	Threshold Quantity
}

// Config is the immutable value object describing one engine instance
// (spec.md §6.1). Construct with NewConfig, which runs every validation
// rule and aggregates every violation into one error.
type Config struct {
	Instrument        string
	OrderBookType     OrderBookType
	MatchingAlgorithm MatchingAlgorithm
	MaxDepth          *int
	TickSize          *Price
	LotSize           *Quantity
}

// NewConfig validates cfg exhaustively and returns a multierr-aggregated
// error naming every violation at once, rather than failing fast on the
// first one — so a misconfigured deployment sees the whole list in one
// log line instead of one rule per redeploy.
func NewConfig(cfg Config) (Config, error) {
	var err error

	if cfg.Instrument == "" {
		err = multierr.Append(err, ErrEmptyInstrument)
	}
	if cfg.TickSize != nil && !cfg.TickSize.IsPositive() {
		err = multierr.Append(err, ErrNonPositiveTickSize)
	}
	if cfg.LotSize != nil && !cfg.LotSize.IsPositive() {
		err = multierr.Append(err, ErrNonPositiveLotSize)
	}

	switch cfg.OrderBookType {
	case Transparent, DarkPool, Hybrid:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrUnknownBookType, cfg.OrderBookType))
	}

	switch cfg.MatchingAlgorithm.Kind {
	case AlgoPriceTime:
		// no extra fields to validate
	case AlgoProRata, AlgoProRataTobFifo:
		if cfg.MatchingAlgorithm.MinQuantity.IsNegative() {
			err = multierr.Append(err, ErrNegativeMinQuantity)
		}
	case AlgoLMMPriority:
		if cfg.MatchingAlgorithm.MinQuantity.IsNegative() {
			err = multierr.Append(err, ErrNegativeMinQuantity)
		}
		pct := cfg.MatchingAlgorithm.LMMAllocationPct
		one, _ := numeric.FromInteger[numeric.S9](1)
		if pct.IsNegative() || pct.GreaterThan(one) {
			err = multierr.Append(err, ErrLMMFractionOutOfRange)
		}
	case AlgoThresholdProRata:
		if cfg.MatchingAlgorithm.MinQuantity.IsNegative() {
			err = multierr.Append(err, ErrNegativeMinQuantity)
		}
		if !cfg.MatchingAlgorithm.Threshold.IsPositive() {
			err = multierr.Append(err, ErrNonPositiveThreshold)
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, cfg.MatchingAlgorithm.Kind))
	}

	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

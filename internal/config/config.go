// Package config loads the engine's external configuration (spec.md
// §6.1) from a TOML file with environment-variable overrides, using
// Viper, and converts it into the immutable domain.Config value object,
// running the full validation rule set on the way.
package config

import (
	"fmt"
	"strings"

	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/spf13/viper"
)

// fileConfig is the Viper-unmarshalled shape; numeric fields arrive as
// strings so they round-trip through FixedDecimal's parser instead of a
// lossy float64.
type fileConfig struct {
	Instrument    string `mapstructure:"instrument"`
	OrderBookType string `mapstructure:"order_book_type"`
	MaxDepth      *int   `mapstructure:"max_depth"`
	TickSize      string `mapstructure:"tick_size"`
	LotSize       string `mapstructure:"lot_size"`

	Algorithm struct {
		Kind          string `mapstructure:"kind"`
		UseSIMD       bool   `mapstructure:"use_simd"`
		MinQuantity   string `mapstructure:"min_quantity"`
		TopOfBookFIFO bool   `mapstructure:"top_of_book_fifo"`
		LMMAccounts   []string `mapstructure:"lmm_accounts"`
		LMMAllocationPct string `mapstructure:"lmm_allocation_pct"`
		Threshold     string `mapstructure:"threshold"`
	} `mapstructure:"algorithm"`
}

// Load reads path (a TOML file) through Viper, applies MATCHCORE_-prefixed
// environment overrides, and validates the result via domain.NewConfig —
// which aggregates every violation into one multierr-wrapped error
// (spec.md §7).
func Load(path string) (domain.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("MATCHCORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return domain.Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	return build(fc)
}

func build(fc fileConfig) (domain.Config, error) {
	cfg := domain.Config{Instrument: fc.Instrument, MaxDepth: fc.MaxDepth}

	switch strings.ToLower(fc.OrderBookType) {
	case "", "transparent":
		cfg.OrderBookType = domain.Transparent
	case "darkpool", "dark_pool":
		cfg.OrderBookType = domain.DarkPool
	case "hybrid":
		cfg.OrderBookType = domain.Hybrid
	default:
		return domain.Config{}, fmt.Errorf("config: unknown order_book_type %q", fc.OrderBookType)
	}

	if fc.TickSize != "" {
		v, err := numeric.FromString[numeric.S9](fc.TickSize)
		if err != nil {
			return domain.Config{}, fmt.Errorf("config: tick_size: %w", err)
		}
		cfg.TickSize = &v
	}
	if fc.LotSize != "" {
		v, err := numeric.FromString[numeric.S9](fc.LotSize)
		if err != nil {
			return domain.Config{}, fmt.Errorf("config: lot_size: %w", err)
		}
		cfg.LotSize = &v
	}

	algo, err := buildAlgorithm(fc)
	if err != nil {
		return domain.Config{}, err
	}
	cfg.MatchingAlgorithm = algo

	return domain.NewConfig(cfg)
}

func buildAlgorithm(fc fileConfig) (domain.MatchingAlgorithm, error) {
	a := fc.Algorithm
	parse := func(s string) (domain.Quantity, error) {
		if s == "" {
			return domain.Quantity{}, nil
		}
		return numeric.FromString[numeric.S9](s)
	}

	minQty, err := parse(a.MinQuantity)
	if err != nil {
		return domain.MatchingAlgorithm{}, fmt.Errorf("config: algorithm.min_quantity: %w", err)
	}
	threshold, err := parse(a.Threshold)
	if err != nil {
		return domain.MatchingAlgorithm{}, fmt.Errorf("config: algorithm.threshold: %w", err)
	}
	lmmPct, err := parse(a.LMMAllocationPct)
	if err != nil {
		return domain.MatchingAlgorithm{}, fmt.Errorf("config: algorithm.lmm_allocation_pct: %w", err)
	}

	accounts := make(map[string]struct{}, len(a.LMMAccounts))
	for _, id := range a.LMMAccounts {
		accounts[id] = struct{}{}
	}

	switch strings.ToLower(a.Kind) {
	case "", "pricetime", "price_time":
		return domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime, UseSIMD: a.UseSIMD}, nil
	case "prorata", "pro_rata":
		return domain.MatchingAlgorithm{Kind: domain.AlgoProRata, MinQuantity: minQty, TopOfBookFIFO: a.TopOfBookFIFO}, nil
	case "prorata_tob_fifo", "pro_rata_tob_fifo":
		return domain.MatchingAlgorithm{Kind: domain.AlgoProRataTobFifo, MinQuantity: minQty}, nil
	case "lmmpriority", "lmm_priority":
		return domain.MatchingAlgorithm{
			Kind: domain.AlgoLMMPriority, MinQuantity: minQty,
			LMMAccounts: accounts, LMMAllocationPct: lmmPct,
		}, nil
	case "thresholdprorata", "threshold_pro_rata":
		return domain.MatchingAlgorithm{Kind: domain.AlgoThresholdProRata, MinQuantity: minQty, Threshold: threshold}, nil
	default:
		return domain.MatchingAlgorithm{}, fmt.Errorf("config: unknown algorithm.kind %q", a.Kind)
	}
}

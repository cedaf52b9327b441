package main

import (
	"github.com/orderflow/matchcore/internal/config"
	"github.com/orderflow/matchcore/internal/domain"
)

// loadConfig returns the engine config named by --config, or a sane
// price/time default over a BTC-USD transparent book when no path was
// given — there is no persisted deployment config to fall back to
// (spec.md §1 Non-goals excludes persistence).
func loadConfig() (domain.Config, error) {
	if configPath == "" {
		return domain.NewConfig(domain.Config{
			Instrument:        "BTC-USD",
			OrderBookType:     domain.Transparent,
			MatchingAlgorithm: domain.MatchingAlgorithm{Kind: domain.AlgoPriceTime, UseSIMD: true},
		})
	}
	return config.Load(configPath)
}

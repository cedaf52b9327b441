package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/events"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/engine"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	var (
		depth int
		seeds []string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "seed a fresh in-process engine with resting orders and print its depth",
		Long: "There is no persisted book to snapshot between process invocations, so this " +
			"command seeds a fresh engine with --seed orders (each side,price,qty, e.g. " +
			"buy,50000,1) before printing the resulting depth.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(depth, seeds)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 10, "number of price levels per side")
	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "side,price,qty — repeatable, e.g. buy,50000,1")
	return cmd
}

func runSnapshot(depth int, seeds []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	eng := engine.New(cfg, events.NopSink{})
	defer eng.Close()

	ctx := context.Background()
	for _, s := range seeds {
		order, err := parseSeedOrder(cfg.Instrument, s)
		if err != nil {
			return err
		}
		if _, err := eng.SubmitOrder(ctx, order); err != nil {
			return err
		}
	}

	printSnapshot(eng.Snapshot(depth))
	return nil
}

func parseSeedOrder(instrument, s string) (*domain.Order, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("snapshot: --seed %q: want side,price,qty", s)
	}
	side, err := parseSide(parts[0])
	if err != nil {
		return nil, err
	}
	price, err := numeric.FromString[numeric.S9](parts[1])
	if err != nil {
		return nil, fmt.Errorf("snapshot: --seed %q: price: %w", s, err)
	}
	qty, err := numeric.FromString[numeric.S9](parts[2])
	if err != nil {
		return nil, fmt.Errorf("snapshot: --seed %q: qty: %w", s, err)
	}
	return domain.NewOrder(uuid.New(), "seed", instrument, side, domain.OrderTypeLimit, &price, qty, domain.GoodTillCancel), nil
}

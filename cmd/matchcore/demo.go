package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/events"
	"github.com/orderflow/matchcore/internal/domain"
	"github.com/orderflow/matchcore/internal/engine"
	"github.com/orderflow/matchcore/internal/numeric"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "run a scripted sequence of orders through one in-process engine and print the resulting trades and depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

// runDemo builds one engine, feeds it a short scripted order sequence, and
// prints the trades and final depth it produces.
func runDemo() error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	sink := events.NewMultiSink(events.NewLogSink(logger))
	eng := engine.New(cfg, sink)
	defer eng.Close()

	ctx := context.Background()
	scripted := []struct {
		user string
		side domain.Side
		px   string
		qty  string
		tif  domain.TimeInForce
	}{
		{"maker-1", domain.SideSell, "50000", "2", domain.GoodTillCancel},
		{"maker-2", domain.SideSell, "50010", "1", domain.GoodTillCancel},
		{"maker-3", domain.SideBuy, "49990", "3", domain.GoodTillCancel},
		{"taker-1", domain.SideBuy, "50000", "1.5", domain.GoodTillCancel},
		{"taker-2", domain.SideSell, "49990", "1", domain.ImmediateOrCancel},
	}

	for _, s := range scripted {
		price, err := numeric.FromString[numeric.S9](s.px)
		if err != nil {
			return err
		}
		qty, err := numeric.FromString[numeric.S9](s.qty)
		if err != nil {
			return err
		}
		order := domain.NewOrder(uuid.New(), s.user, cfg.Instrument, s.side, domain.OrderTypeLimit, &price, qty, s.tif)
		evs, err := eng.SubmitOrder(ctx, order)
		if err != nil {
			return err
		}
		for _, ev := range evs {
			if ev.Kind == events.KindOrderMatched {
				printTrade(ev.Trade)
			}
		}
	}

	printSnapshot(eng.Snapshot(10))
	return nil
}

func printTrade(tr domain.Trade) {
	price, _ := decimal.NewFromString(tr.Price.String())
	qty, _ := decimal.NewFromString(tr.Quantity.String())
	notional, err := tr.NotionalMicro()
	notionalStr := "n/a"
	if err == nil {
		notionalStr = notional.String()
	}
	fmt.Printf("trade: %s @ %s notional=%s (maker=%s taker=%s)\n",
		qty.String(), price.String(), notionalStr, tr.MakerOrderID, tr.TakerOrderID)
}

func printSnapshot(snap domain.Snapshot) {
	fmt.Printf("\n%s depth:\n", snap.Instrument)
	fmt.Println("  asks:")
	for i := len(snap.Asks) - 1; i >= 0; i-- {
		printLevel(snap.Asks[i])
	}
	fmt.Println("  bids:")
	for _, l := range snap.Bids {
		printLevel(l)
	}
	if snap.Spread != nil {
		fmt.Printf("  spread: %s\n", snap.Spread.String())
	}
}

func printLevel(l domain.LevelView) {
	price, _ := decimal.NewFromString(l.Price.String())
	qty, _ := decimal.NewFromString(l.Aggregate.String())
	fmt.Printf("    %s @ %s\n", qty.String(), price.String())
}

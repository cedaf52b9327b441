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

func newSubmitCmd() *cobra.Command {
	var (
		user  string
		side  string
		price string
		qty   string
		tif   string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "submit a single limit order to a fresh in-process engine and print the resulting events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(user, side, price, qty, tif)
		},
	}
	cmd.Flags().StringVar(&user, "user", "cli-user", "submitting user id")
	cmd.Flags().StringVar(&side, "side", "", "buy|sell (required)")
	cmd.Flags().StringVar(&price, "price", "", "limit price (required)")
	cmd.Flags().StringVar(&qty, "qty", "", "order quantity (required)")
	cmd.Flags().StringVar(&tif, "tif", "gtc", "gtc|ioc|fok|gtd")
	cmd.MarkFlagRequired("side")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("qty")
	return cmd
}

func runSubmit(user, sideFlag, priceFlag, qtyFlag, tifFlag string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	side, err := parseSide(sideFlag)
	if err != nil {
		return err
	}
	tif, err := parseTIF(tifFlag)
	if err != nil {
		return err
	}
	price, err := numeric.FromString[numeric.S9](priceFlag)
	if err != nil {
		return fmt.Errorf("submit: --price: %w", err)
	}
	qty, err := numeric.FromString[numeric.S9](qtyFlag)
	if err != nil {
		return fmt.Errorf("submit: --qty: %w", err)
	}

	eng := engine.New(cfg, events.NopSink{})
	defer eng.Close()

	order := domain.NewOrder(uuid.New(), user, cfg.Instrument, side, domain.OrderTypeLimit, &price, qty, tif)
	evs, err := eng.SubmitOrder(context.Background(), order)
	if err != nil {
		return err
	}

	for _, ev := range evs {
		fmt.Printf("%s\n", describeEvent(ev))
	}
	return nil
}

func describeEvent(ev events.Event) string {
	switch ev.Kind {
	case events.KindOrderMatched:
		return fmt.Sprintf("%s: %s @ %s maker=%s taker=%s",
			ev.Kind, ev.Trade.Quantity, ev.Trade.Price, ev.Trade.MakerOrderID, ev.Trade.TakerOrderID)
	case events.KindOrderRejected:
		return fmt.Sprintf("%s: order=%s reason=%v", ev.Kind, ev.OrderID, ev.Reason)
	default:
		return fmt.Sprintf("%s: order=%s", ev.Kind, ev.OrderID)
	}
}

func parseSide(s string) (domain.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return domain.SideBuy, nil
	case "sell":
		return domain.SideSell, nil
	default:
		return 0, fmt.Errorf("submit: --side must be buy|sell, got %q", s)
	}
}

func parseTIF(s string) (domain.TimeInForce, error) {
	switch strings.ToLower(s) {
	case "gtc":
		return domain.GoodTillCancel, nil
	case "ioc":
		return domain.ImmediateOrCancel, nil
	case "fok":
		return domain.FillOrKill, nil
	case "gtd":
		return domain.GoodTillDate, nil
	default:
		return 0, fmt.Errorf("submit: --tif must be gtc|ioc|fok|gtd, got %q", s)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orderflow/matchcore/events"
	"github.com/orderflow/matchcore/internal/engine"
	"github.com/spf13/cobra"
)

func newCancelCmd() *cobra.Command {
	var orderID string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "cancel an order by id on a fresh in-process engine",
		Long: "There is no persisted book to cancel against between process invocations, so " +
			"this command starts a fresh engine and reports that the given id is unknown — it " +
			"exists to exercise Engine.CancelOrder's API and is most useful scripted alongside " +
			"submit within the same process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCancel(orderID)
		},
	}
	cmd.Flags().StringVar(&orderID, "order-id", "", "order id to cancel (required)")
	cmd.MarkFlagRequired("order-id")
	return cmd
}

func runCancel(orderIDFlag string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	id, err := uuid.Parse(orderIDFlag)
	if err != nil {
		return fmt.Errorf("cancel: --order-id: %w", err)
	}

	eng := engine.New(cfg, events.NopSink{})
	defer eng.Close()

	ev, err := eng.CancelOrder(context.Background(), id)
	if err != nil {
		return err
	}
	if ev == nil {
		fmt.Printf("no such order (or already terminal): %s\n", id)
		return nil
	}
	fmt.Printf("%s\n", describeEvent(*ev))
	return nil
}

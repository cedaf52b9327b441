// Command matchcore is a thin demo/operational CLI over one in-process
// matching engine instance: submit, cancel, and snapshot subcommands,
// plus a scripted demo that seeds an engine and prints the resulting
// trades and depth. It is ambient scaffolding, not a network front-end —
// no socket, no wire protocol.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "matchcore",
		Short: "matchcore runs a single-instrument limit order matching engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a matchcore TOML config file (omit for an in-memory price/time default)")

	root.AddCommand(newDemoCmd())
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newCancelCmd())
	root.AddCommand(newSnapshotCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

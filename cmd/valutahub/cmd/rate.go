package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valutatrade/hub/market"
)

var rateCmd = &cobra.Command{
	Use:   "rate <from> <to>",
	Short: "Show the current exchange rate for a currency pair",
	Long: `Resolve the rate between two currencies from the cached snapshot,
triangulating through USD when no direct or inverse quote exists. A stale
snapshot triggers a sync first.

Examples:
  valutahub rate BTC USD
  valutahub rate EUR GBP`,
	Args: cobra.ExactArgs(2),
	RunE: runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	r, err := app.engine.Rate(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("1 %s = %s\n", r.From, market.FormatAmount(r.Rate, r.To))
	fmt.Printf("  source: %s, updated: %s\n", r.Source, r.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	if !r.IsDirect {
		fmt.Println("  derived quote (no direct pair in the snapshot)")
	}
	return nil
}

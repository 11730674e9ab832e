package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/valutatrade/hub/market"
	"github.com/valutatrade/hub/trade"
)

var buyCmd = &cobra.Command{
	Use:   "buy <currency> <amount>",
	Short: "Buy currency, paying from the USD wallet",
	Long: `Buy an amount of a currency at the current rate. The cost in USD is
withdrawn from the user's USD wallet and the purchased amount is credited
to the target wallet, creating it if needed.

Example:
  valutahub buy BTC 0.001 --user alice`,
	Args: cobra.ExactArgs(2),
	RunE: runBuy,
}

var sellCmd = &cobra.Command{
	Use:   "sell <currency> <amount>",
	Short: "Sell currency, crediting the proceeds in USD",
	Long: `Sell an amount of a held currency at the current rate. The amount is
withdrawn from the currency's wallet and the USD proceeds are credited to
the USD wallet.

Example:
  valutahub sell BTC 0.001 --user alice`,
	Args: cobra.ExactArgs(2),
	RunE: runSell,
}

var tradeUser string

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)

	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		c.Flags().StringVarP(&tradeUser, "user", "u", "", "username holding the portfolio (required)")
		c.MarkFlagRequired("user")
	}
}

func runBuy(cmd *cobra.Command, args []string) error {
	return runOrder(cmd.Context(), args, "Bought", func(ctx context.Context, e *trade.Engine, userID int64, code string, amount float64) (trade.Receipt, error) {
		return e.Buy(ctx, userID, code, amount)
	})
}

func runSell(cmd *cobra.Command, args []string) error {
	return runOrder(cmd.Context(), args, "Sold", func(ctx context.Context, e *trade.Engine, userID int64, code string, amount float64) (trade.Receipt, error) {
		return e.Sell(ctx, userID, code, amount)
	})
}

func runOrder(ctx context.Context, args []string, verb string, execute func(context.Context, *trade.Engine, int64, string, float64) (trade.Receipt, error)) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.resolveUser(tradeUser)
	if err != nil {
		return err
	}

	rec, err := execute(ctx, app.engine, user.ID, args[0], amount)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s %s at %s\n", verb,
		market.FormatAmount(rec.Amount, rec.Code),
		market.FormatAmount(rec.Rate, market.Hub))
	fmt.Printf("  total: %s\n", market.FormatAmount(rec.Total, market.Hub))
	fmt.Printf("  balances: %s, %s\n",
		market.FormatAmount(rec.Balance, rec.Code),
		market.FormatAmount(rec.USDBalance, market.Hub))
	return nil
}

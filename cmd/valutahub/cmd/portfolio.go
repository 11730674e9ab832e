package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valutatrade/hub/market"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show a user's wallets and total portfolio value",
	Long: `List every wallet of the user and the portfolio total converted into
the base currency. Wallets whose rate cannot be resolved are listed but
excluded from the total.

Examples:
  valutahub portfolio --user alice
  valutahub portfolio --user alice --base EUR`,
	Args: cobra.NoArgs,
	RunE: runPortfolio,
}

var (
	portfolioUser string
	portfolioBase string
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().StringVarP(&portfolioUser, "user", "u", "", "username (required)")
	portfolioCmd.Flags().StringVarP(&portfolioBase, "base", "b", market.Hub, "base currency for the total")
	portfolioCmd.MarkFlagRequired("user")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	base, err := market.ValidateCode(portfolioBase)
	if err != nil {
		return err
	}

	user, err := app.resolveUser(portfolioUser)
	if err != nil {
		return err
	}

	p, err := app.ledger.Portfolio(user.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Portfolio of %s (user %d)\n", user.Username, user.ID)
	if len(p.Wallets) == 0 {
		fmt.Println("  no wallets")
		return nil
	}

	for _, code := range p.Codes() {
		fmt.Printf("  %s\n", market.FormatAmount(p.Wallets[code].Balance, code))
	}

	total, skipped, err := p.TotalValue(base, func(from, to string) (float64, error) {
		r, err := app.cache.Resolve(from, to)
		if err != nil {
			return 0, err
		}
		return r.Rate, nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Total: %s\n", market.FormatAmount(total, base))
	if len(skipped) > 0 {
		fmt.Printf("  excluded (no rate): %s\n", strings.Join(skipped, ", "))
	}
	if last, ok := app.cache.LastRefresh(); ok {
		fmt.Printf("  rates updated: %s\n", last.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

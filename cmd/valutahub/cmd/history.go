package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valutatrade/hub/journal"
	"github.com/valutatrade/hub/market"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show transaction or rate history from the journal",
	Long: `Without flags, list recent transactions. With --user, list only that
user's trades. With --pair, list the rate history of a currency pair
instead.

Examples:
  valutahub history
  valutahub history --user alice --limit 10
  valutahub history --pair BTC_USD`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyUser  string
	historyPair  string
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "filter transactions by username")
	historyCmd.Flags().StringVarP(&historyPair, "pair", "p", "", "show rate history for PAIR (e.g. BTC_USD)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if historyPair != "" {
		return printRateHistory(app)
	}
	return printTransactions(app)
}

func printRateHistory(app *app) error {
	pair, err := market.ParsePairKey(historyPair)
	if err != nil {
		return err
	}

	entries, err := app.journal.Rates(pair.From, pair.To, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No rate history for %s\n", pair)
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %s_%s  %.8f  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.FromCurrency, e.ToCurrency, e.Rate, e.Source)
	}
	return nil
}

func printTransactions(app *app) error {
	var userID int64
	if historyUser != "" {
		user, err := app.users.Lookup(historyUser)
		if err != nil {
			return err
		}
		userID = user.ID
	}

	txs, err := app.journal.Transactions(userID, historyLimit)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("No transactions")
		return nil
	}

	for _, tx := range txs {
		// BUY moves USD into the traded currency, SELL the reverse.
		code, costCcy := tx.ToCurrency, tx.FromCurrency
		if tx.Action == journal.ActionSell {
			code, costCcy = tx.FromCurrency, tx.ToCurrency
		}
		fmt.Printf("%s  user %-4d %-4s %s at %.6f, total %s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.UserID, tx.Action,
			market.FormatAmount(tx.Amount, code),
			tx.Rate, market.FormatAmount(tx.Total, costCcy))
	}
	return nil
}

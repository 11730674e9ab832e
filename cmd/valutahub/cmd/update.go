package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Synchronize exchange rates from the configured sources",
	Long: `Fetch current rates from every configured provider, merge them and
replace the cached snapshot. Each updated pair is also appended to the
rate history journal.

Examples:
  valutahub update
  valutahub update --source coingecko`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var updateSource string

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&updateSource, "source", "s", "", "sync only the named source")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var selected []string
	if updateSource != "" {
		selected = []string{updateSource}
	}

	res, err := app.sync.Refresh(cmd.Context(), selected...)
	if err != nil {
		return fmt.Errorf("sync rates: %w", err)
	}

	for _, e := range res.Errors {
		fmt.Printf("✗ %s: %v\n", e.Source, e.Err)
	}
	if len(res.UpdatedSources) > 0 {
		fmt.Printf("✓ Updated %d rates from %s\n",
			res.RateCount, strings.Join(res.UpdatedSources, ", "))
	}
	if res.RateCount == 0 {
		return fmt.Errorf("no rates updated")
	}
	return nil
}

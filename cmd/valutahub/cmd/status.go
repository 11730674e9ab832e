package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the cached rate snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Sources: %s\n", strings.Join(app.sync.SourceNames(), ", "))
	fmt.Printf("Cached pairs: %d\n", app.cache.Len())

	last, ok := app.cache.LastRefresh()
	if !ok {
		fmt.Println("Last refresh: never (run 'valutahub update')")
		return nil
	}

	ttl := app.cfg.Rates.TTL()
	fmt.Printf("Last refresh: %s (%s ago)\n",
		last.Format("2006-01-02 15:04:05 MST"),
		time.Since(last).Round(time.Second))
	if app.cache.Fresh(ttl) {
		fmt.Printf("Freshness: fresh (TTL %s)\n", ttl)
	} else {
		fmt.Printf("Freshness: stale (TTL %s)\n", ttl)
	}
	return nil
}

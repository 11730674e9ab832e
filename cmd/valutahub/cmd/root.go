package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valutatrade/hub/auth"
	"github.com/valutatrade/hub/config"
	"github.com/valutatrade/hub/journal"
	"github.com/valutatrade/hub/ledger"
	"github.com/valutatrade/hub/rates"
	"github.com/valutatrade/hub/store"
	"github.com/valutatrade/hub/trade"
)

var rootCmd = &cobra.Command{
	Use:   "valutahub",
	Short: "A multi-currency exchange simulator with live rate synchronization",
	Long: `Valutahub keeps per-user currency portfolios and trades them at real
exchange rates pulled from public providers.

It provides tools for:
  - Synchronizing crypto and fiat rates from CoinGecko and ExchangeRate-API
  - Buying and selling currencies against a USD hub
  - Managing user accounts and multi-wallet portfolios
  - Querying rate history and transaction journals`,
}

var (
	cfgPath string
	verbose bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "valutahub.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log internal operations")
}

// app bundles the wired subsystems behind one handle so every command
// builds them the same way.
type app struct {
	cfg     *config.Config
	store   *store.Store
	ledger  *ledger.Ledger
	cache   *rates.Cache
	sync    *rates.Synchronizer
	journal journal.Journal
	users   *auth.Service
	engine  *trade.Engine
	logger  *slog.Logger
}

func openApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return nil, err
	}

	cache, err := rates.NewCache(st, logger)
	if err != nil {
		jnl.Close()
		return nil, fmt.Errorf("open rate cache: %w", err)
	}

	timeout := cfg.Rates.RequestTimeout()
	coingecko := rates.NewCoinGecko(cfg.Sources.CoinGeckoURL, cfg.Sources.CryptoCurrencies, timeout)
	exchangerate := rates.NewExchangeRate(cfg.Sources.ExchangeRateURL, cfg.Sources.ExchangeRateAPIKey,
		cfg.Sources.FiatCurrencies, timeout)

	sync := rates.NewSynchronizer(cache, jnl, logger,
		rates.NewResilientFetcher(coingecko, cfg.Rates.RetryCount, cfg.Rates.RetryDelay(), logger),
		rates.NewResilientFetcher(exchangerate, cfg.Rates.RetryCount, cfg.Rates.RetryDelay(), logger),
	)

	l := ledger.NewLedger(st, logger)
	return &app{
		cfg:     cfg,
		store:   st,
		ledger:  l,
		cache:   cache,
		sync:    sync,
		journal: jnl,
		users:   auth.NewService(st, l, logger),
		engine:  trade.NewEngine(l, cache, sync, jnl, cfg.Rates.TTL(), logger),
		logger:  logger,
	}, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		jnl, err := journal.NewCSV(cfg.Journal.TransactionsFile, cfg.Journal.RatesFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return jnl, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		jnl, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return jnl, nil
	}
}

func (a *app) Close() {
	if err := a.journal.Close(); err != nil {
		a.logger.Error("close journal", "error", err)
	}
}

// resolveUser maps the --user flag to a registered account.
func (a *app) resolveUser(username string) (*auth.User, error) {
	if username == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := a.users.Lookup(username)
	if err != nil {
		return nil, err
	}
	return user, nil
}

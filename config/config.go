package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	DataDir string        `json:"data_dir" yaml:"data_dir"`
	Rates   RatesConfig   `json:"rates" yaml:"rates"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// RatesConfig controls cache freshness and fetch retry behavior.
type RatesConfig struct {
	TTLSeconds            int `json:"ttl_seconds" yaml:"ttl_seconds"`
	RetryCount            int `json:"retry_count" yaml:"retry_count"`
	RetryDelaySeconds     int `json:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// TTL returns the rate cache time-to-live.
func (r RatesConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// RetryDelay returns the base backoff delay between fetch attempts.
func (r RatesConfig) RetryDelay() time.Duration {
	return time.Duration(r.RetryDelaySeconds) * time.Second
}

// RequestTimeout returns the per-request network timeout.
func (r RatesConfig) RequestTimeout() time.Duration {
	return time.Duration(r.RequestTimeoutSeconds) * time.Second
}

// SourcesConfig holds external rate-provider settings.
type SourcesConfig struct {
	CoinGeckoURL       string   `json:"coingecko_url" yaml:"coingecko_url"`
	ExchangeRateURL    string   `json:"exchangerate_url" yaml:"exchangerate_url"`
	ExchangeRateAPIKey string   `json:"exchangerate_api_key,omitempty" yaml:"exchangerate_api_key,omitempty"`
	FiatCurrencies     []string `json:"fiat_currencies" yaml:"fiat_currencies"`
	CryptoCurrencies   []string `json:"crypto_currencies" yaml:"crypto_currencies"`
}

// JournalConfig selects the transaction/history journal backend.
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "sqlite" or "csv"
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	RatesFile        string `json:"rates_file,omitempty" yaml:"rates_file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load returns the config at path, or defaults (plus env overrides) when the
// file does not exist.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// SaveToFile writes the configuration to path, YAML by extension, JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if n := len(path); (n > 5 && path[n-5:] == ".yaml") || (n > 4 && path[n-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// applyEnv overlays settings that commonly live outside the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("EXCHANGERATE_API_KEY"); v != "" {
		c.Sources.ExchangeRateAPIKey = v
	}
	if v := os.Getenv("VALUTAHUB_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("VALUTAHUB_RATES_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Rates.TTLSeconds = ttl
		}
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Rates.TTLSeconds <= 0 {
		return fmt.Errorf("rates.ttl_seconds must be positive")
	}
	if c.Rates.RetryCount < 0 {
		return fmt.Errorf("rates.retry_count must not be negative")
	}
	if c.Rates.RetryDelaySeconds < 0 {
		return fmt.Errorf("rates.retry_delay_seconds must not be negative")
	}
	if c.Rates.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("rates.request_timeout_seconds must be positive")
	}
	if c.Sources.CoinGeckoURL == "" {
		return fmt.Errorf("sources.coingecko_url is required")
	}
	if c.Sources.ExchangeRateURL == "" {
		return fmt.Errorf("sources.exchangerate_url is required")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.RatesFile == "" {
			return fmt.Errorf("journal transactions_file and rates_file required for csv journal")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'csv'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Rates: RatesConfig{
			TTLSeconds:            300,
			RetryCount:            3,
			RetryDelaySeconds:     1,
			RequestTimeoutSeconds: 10,
		},
		Sources: SourcesConfig{
			CoinGeckoURL:     "https://api.coingecko.com/api/v3/simple/price",
			ExchangeRateURL:  "https://v6.exchangerate-api.com/v6",
			FiatCurrencies:   []string{"EUR", "GBP", "RUB", "JPY", "CHF", "CNY"},
			CryptoCurrencies: []string{"BTC", "ETH", "SOL", "ADA", "DOGE"},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "data/journal.sqlite",
		},
	}
}

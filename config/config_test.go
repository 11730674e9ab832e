package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Minute, cfg.Rates.TTL())
	assert.Equal(t, time.Second, cfg.Rates.RetryDelay())
	assert.Equal(t, 10*time.Second, cfg.Rates.RequestTimeout())
}

func TestLoadFromFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	body := `
data_dir: /tmp/hub
rates:
  ttl_seconds: 60
  retry_count: 2
  retry_delay_seconds: 1
  request_timeout_seconds: 5
sources:
  coingecko_url: https://example.com/price
  exchangerate_url: https://example.com/v6
journal:
  type: csv
  transactions_file: tx.csv
  rates_file: rates.csv
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hub", cfg.DataDir)
	assert.Equal(t, 60, cfg.Rates.TTLSeconds)
	assert.Equal(t, "csv", cfg.Journal.Type)
	// Defaults survive for fields the file omits.
	assert.Equal(t, []string{"BTC", "ETH", "SOL", "ADA", "DOGE"}, cfg.Sources.CryptoCurrencies)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.DataDir = filepath.Join(dir, "data")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, cfg.Rates, loaded.Rates)
	assert.Equal(t, cfg.Journal, loaded.Journal)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty_data_dir", func(c *Config) { c.DataDir = "" }},
		{"zero_ttl", func(c *Config) { c.Rates.TTLSeconds = 0 }},
		{"negative_retries", func(c *Config) { c.Rates.RetryCount = -1 }},
		{"zero_timeout", func(c *Config) { c.Rates.RequestTimeoutSeconds = 0 }},
		{"bad_journal_type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"sqlite_without_path", func(c *Config) { c.Journal.DBPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EXCHANGERATE_API_KEY", "key-from-env")
	t.Setenv("VALUTAHUB_RATES_TTL_SECONDS", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", cfg.Sources.ExchangeRateAPIKey)
	assert.Equal(t, 42, cfg.Rates.TTLSeconds)
}

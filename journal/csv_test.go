package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/hub/internal/id"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	ratesPath := filepath.Join(dir, "rate_history.csv")

	j, err := NewCSV(txPath, ratesPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, txPath, ratesPath
}

func TestCSVTransactionRoundTrip(t *testing.T) {
	t.Parallel()

	j, _, _ := newTestCSV(t)
	now := time.Date(2026, 2, 3, 12, 30, 0, 0, time.UTC)

	want := Transaction{
		ID:           id.New(),
		UserID:       7,
		Action:       ActionSell,
		FromCurrency: "ETH",
		ToCurrency:   "USD",
		Amount:       2,
		Rate:         3720,
		Total:        7440,
		Timestamp:    now,
	}
	require.NoError(t, j.RecordTransaction(want))

	got, err := j.Transactions(7, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestCSVAppendAcrossReopen(t *testing.T) {
	t.Parallel()

	j, txPath, ratesPath := newTestCSV(t)
	require.NoError(t, j.RecordTransaction(Transaction{
		ID: id.New(), UserID: 1, Action: ActionBuy,
		FromCurrency: "USD", ToCurrency: "BTC",
		Amount: 0.1, Rate: 50000, Total: 5000,
		Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, j.Close())

	// Reopen: previous rows must survive and new rows append after them.
	j2, err := NewCSV(txPath, ratesPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j2.Close() })

	require.NoError(t, j2.RecordTransaction(Transaction{
		ID: id.New(), UserID: 1, Action: ActionSell,
		FromCurrency: "BTC", ToCurrency: "USD",
		Amount: 0.1, Rate: 51000, Total: 5100,
		Timestamp: time.Now().UTC(),
	}))

	got, err := j2.Transactions(1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ActionSell, got[0].Action) // newest first
	assert.Equal(t, ActionBuy, got[1].Action)
}

func TestCSVRateFilterAndLimit(t *testing.T) {
	t.Parallel()

	j, _, _ := newTestCSV(t)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordRate(RateEntry{
			ID: id.New(), FromCurrency: "BTC", ToCurrency: "USD",
			Rate: 50000 + float64(i), Timestamp: now, Source: "CoinGecko",
			SyncSources: []string{"coingecko"},
		}))
	}
	require.NoError(t, j.RecordRate(RateEntry{
		ID: id.New(), FromCurrency: "EUR", ToCurrency: "USD",
		Rate: 1.08, Timestamp: now, Source: "ExchangeRate-API",
	}))

	btc, err := j.Rates("BTC", "USD", 2)
	require.NoError(t, err)
	require.Len(t, btc, 2)
	assert.Equal(t, 50002.0, btc[0].Rate)
	assert.Equal(t, []string{"coingecko"}, btc[0].SyncSources)

	all, err := j.Rates("", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

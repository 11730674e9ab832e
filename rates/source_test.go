package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/hub/market"
)

func TestCoinGeckoFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		json.NewEncoder(w).Encode(map[string]map[string]float64{
			"bitcoin":  {"usd": 59337.21},
			"ethereum": {"usd": 3720.0},
		})
	}))
	defer server.Close()

	src := NewCoinGecko(server.URL, []string{"BTC", "ETH"}, 5*time.Second)
	pairs, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[market.PairKey]float64{
		{From: "BTC", To: "USD"}: 59337.21,
		{From: "ETH", To: "USD"}: 3720.0,
	}, pairs)
}

func TestCoinGeckoSkipsMissingAssets(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Provider only answers for bitcoin.
		json.NewEncoder(w).Encode(map[string]map[string]float64{
			"bitcoin": {"usd": 50000},
		})
	}))
	defer server.Close()

	src := NewCoinGecko(server.URL, []string{"BTC", "ETH"}, 5*time.Second)
	pairs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 50000.0, pairs[market.PairKey{From: "BTC", To: "USD"}])
}

func TestCoinGeckoNoKnownAssets(t *testing.T) {
	t.Parallel()

	src := NewCoinGecko("http://unused", []string{"XXX"}, time.Second)
	pairs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestCoinGeckoErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "throttled",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSourceThrottled)
			},
		},
		{
			name:   "rejected",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var rejected *RejectedError
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, http.StatusBadRequest, rejected.Status)
			},
		},
		{
			name:   "server_error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrSourceUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			src := NewCoinGecko(server.URL, []string{"BTC"}, 5*time.Second)
			_, err := src.Fetch(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCoinGeckoNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	src := NewCoinGecko(server.URL, []string{"BTC"}, time.Second)
	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestExchangeRateFetchInvertsQuotes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/USD", r.URL.Path)

		json.NewEncoder(w).Encode(exchangeRateResponse{
			Result:   "success",
			BaseCode: "USD",
			Rates: map[string]float64{
				"EUR": 0.8, // 0.8 EUR per USD -> 1.25 USD per EUR
				"JPY": 125.0,
			},
		})
	}))
	defer server.Close()

	src := NewExchangeRate(server.URL, "test-key", []string{"EUR", "JPY", "GBP"}, 5*time.Second)
	pairs, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1.25, pairs[market.PairKey{From: "EUR", To: "USD"}], 1e-12)
	assert.InDelta(t, 0.008, pairs[market.PairKey{From: "JPY", To: "USD"}], 1e-12)
	// GBP missing from the payload: skipped, not zero.
	_, ok := pairs[market.PairKey{From: "GBP", To: "USD"}]
	assert.False(t, ok)
}

func TestExchangeRateFailureDiscriminator(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(exchangeRateResponse{
			Result:    "error",
			ErrorType: "invalid-key",
		})
	}))
	defer server.Close()

	src := NewExchangeRate(server.URL, "bad-key", []string{"EUR"}, 5*time.Second)
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "invalid-key")
}

func TestExchangeRateMissingKeyRejected(t *testing.T) {
	t.Parallel()

	src := NewExchangeRate("http://unused", "", []string{"EUR"}, time.Second)
	_, err := src.Fetch(context.Background())

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusUnauthorized, rejected.Status)
}

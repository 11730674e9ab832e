package rates

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valutatrade/hub/market"
)

// ExchangeRateSource fetches fiat rates from ExchangeRate-API's
// latest-relative-to-USD endpoint.
type ExchangeRateSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	fiat    []string
}

func NewExchangeRate(baseURL, apiKey string, fiatCodes []string, timeout time.Duration) *ExchangeRateSource {
	return &ExchangeRateSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		fiat:    fiatCodes,
	}
}

func (s *ExchangeRateSource) Name() string { return "exchangerate" }

type exchangeRateResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

func (s *ExchangeRateSource) Fetch(ctx context.Context) (map[market.PairKey]float64, error) {
	if s.apiKey == "" {
		return nil, &RejectedError{Source: s.Name(), Status: http.StatusUnauthorized}
	}

	url := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, market.Hub)

	var body exchangeRateResponse
	if err := fetchJSON(ctx, s.client, s.Name(), url, &body); err != nil {
		return nil, err
	}

	// The API reports failures in-band; check the discriminator before
	// trusting the payload.
	if body.Result != "success" {
		errType := body.ErrorType
		if errType == "" {
			errType = "unknown error"
		}
		return nil, fmt.Errorf("source %s: %w: api result %q", s.Name(), ErrSourceUnavailable, errType)
	}

	out := make(map[market.PairKey]float64, len(s.fiat))
	for _, code := range s.fiat {
		perUSD, ok := body.Rates[code]
		if !ok || perUSD <= 0 {
			continue
		}
		// The API quotes units of the target currency per one USD; the
		// cache stores USD per one unit of FROM, so invert.
		out[market.PairKey{From: code, To: market.Hub}] = 1 / perUSD
	}
	return out, nil
}

package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/valutatrade/hub/market"
)

// Source is one external provider of exchange rates. Fetch performs a single
// request; retries are the ResilientFetcher's job.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (map[market.PairKey]float64, error)
}

var (
	// ErrSourceUnavailable covers network faults, timeouts and 5xx
	// responses: transient, worth retrying.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceThrottled is the provider's rate-limit signal (HTTP 429).
	// Retried with exponential backoff.
	ErrSourceThrottled = errors.New("source throttled")
)

// RejectedError is a non-throttle 4xx response: a configuration or data
// error, never retried.
type RejectedError struct {
	Source string
	Status int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("source %s rejected request (status %d)", e.Source, e.Status)
}

// RateUnavailableError reports that no direct, inverse or triangulated path
// exists for a pair.
type RateUnavailableError struct {
	From, To string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no rate available for %s -> %s", e.From, e.To)
}

// fetchJSON performs one GET and decodes the JSON body, classifying failures
// into the source error taxonomy.
func fetchJSON(ctx context.Context, client *http.Client, source, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("source %s: create request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "valutahub/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("source %s: %w: %v", source, ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("source %s: %w", source, ErrSourceThrottled)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		io.Copy(io.Discard, resp.Body)
		return &RejectedError{Source: source, Status: resp.StatusCode}
	default:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("source %s: %w: status %d", source, ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("source %s: decode response: %w", source, err)
	}
	return nil
}

package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valutatrade/hub/market"
)

// ResilientFetcher wraps a Source with bounded retries and backoff.
//
// Transient failures (ErrSourceUnavailable) back off linearly: delay × k
// before the k-th retry. Throttling (ErrSourceThrottled) backs off
// exponentially: delay × 2^k. RejectedError is terminal and surfaces
// immediately.
type ResilientFetcher struct {
	src     Source
	retries int
	delay   time.Duration
	logger  *slog.Logger

	// sleep is swapped out in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewResilientFetcher(src Source, retries int, delay time.Duration, logger *slog.Logger) *ResilientFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientFetcher{
		src:     src,
		retries: retries,
		delay:   delay,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func (f *ResilientFetcher) Name() string { return f.src.Name() }

// Fetch attempts the wrapped source up to 1+retries times.
func (f *ResilientFetcher) Fetch(ctx context.Context) (map[market.PairKey]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			delay := f.backoff(lastErr, attempt)
			f.logger.Debug("retrying source",
				"source", f.src.Name(), "attempt", attempt, "delay", delay)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("source %s: %w: %v", f.src.Name(), ErrSourceUnavailable, err)
			}
		}

		pairs, err := f.src.Fetch(ctx)
		if err == nil {
			return pairs, nil
		}

		var rejected *RejectedError
		if errors.As(err, &rejected) {
			// Bad credentials or request shape; retrying cannot help.
			return nil, err
		}

		lastErr = err
		f.logger.Warn("source fetch failed",
			"source", f.src.Name(), "attempt", attempt, "error", err)
	}

	err := fmt.Errorf("source %s: retries exhausted after %d attempts: %w",
		f.src.Name(), f.retries+1, lastErr)
	if !errors.Is(err, ErrSourceUnavailable) {
		err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return nil, err
}

// backoff computes the delay before the k-th retry (k is 1-indexed).
func (f *ResilientFetcher) backoff(lastErr error, k int) time.Duration {
	if errors.Is(lastErr, ErrSourceThrottled) {
		return f.delay * (1 << k)
	}
	return f.delay * time.Duration(k)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

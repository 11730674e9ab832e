package rates

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/valutatrade/hub/internal/id"
	"github.com/valutatrade/hub/journal"
	"github.com/valutatrade/hub/market"
)

// SourceError records which source failed during a sync and why.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }

// Result summarizes one refresh run.
type Result struct {
	Success        bool // true iff no selected source failed
	UpdatedSources []string
	Errors         []SourceError
	RateCount      int
	Timestamp      time.Time
}

// Synchronizer orchestrates fetching from every source, merging the results
// and replacing the cache snapshot.
type Synchronizer struct {
	fetchers []*ResilientFetcher // in registration order; merge is first-writer-wins
	cache    *Cache
	journal  journal.Journal
	logger   *slog.Logger
	now      func() time.Time
}

func NewSynchronizer(cache *Cache, jnl journal.Journal, logger *slog.Logger, fetchers ...*ResilientFetcher) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		fetchers: fetchers,
		cache:    cache,
		journal:  jnl,
		logger:   logger,
		now:      time.Now,
	}
}

// SourceNames returns the registered source names in order.
func (s *Synchronizer) SourceNames() []string {
	names := make([]string, len(s.fetchers))
	for i, f := range s.fetchers {
		names[i] = f.Name()
	}
	return names
}

// Refresh fetches the selected sources (all of them when none are named),
// merges their pairs and replaces the snapshot. One source failing degrades
// only its own contribution; an entirely empty merge leaves the previous
// snapshot untouched.
func (s *Synchronizer) Refresh(ctx context.Context, sources ...string) (Result, error) {
	selected, err := s.selectFetchers(sources)
	if err != nil {
		return Result{}, err
	}

	start := s.now()
	res := Result{Timestamp: start}
	merged := map[string]Record{}

	// Network calls happen before any cache lock is taken, so readers of a
	// still-fresh snapshot are never starved by a slow source.
	for _, f := range selected {
		pairs, err := f.Fetch(ctx)
		if err != nil {
			s.logger.Error("rate source failed", "source", f.Name(), "error", err)
			res.Errors = append(res.Errors, SourceError{Source: f.Name(), Err: err})
			continue
		}

		added := 0
		for _, key := range sortedKeys(pairs) {
			// First writer per key wins; sources are disjoint in
			// practice but a deterministic tie-break avoids
			// order-dependent bugs.
			if _, exists := merged[key.String()]; exists {
				continue
			}
			merged[key.String()] = Record{
				Rate:      pairs[key],
				UpdatedAt: start,
				Source:    f.Name(),
			}
			added++
		}

		res.UpdatedSources = append(res.UpdatedSources, f.Name())
		res.RateCount += added
		s.logger.Info("rates fetched", "source", f.Name(), "pairs", added)
	}

	res.Success = len(res.Errors) == 0

	if len(merged) == 0 {
		// All sources failed or returned nothing. Never destroy a valid
		// cache with an empty result.
		s.logger.Warn("refresh produced no rates, keeping previous snapshot")
		return res, nil
	}

	snap := Snapshot{Pairs: merged, LastRefresh: &start}
	if err := s.cache.Replace(snap); err != nil {
		return res, err
	}

	s.appendHistory(merged, res.UpdatedSources)

	s.logger.Info("rate snapshot replaced",
		"pairs", len(merged), "sources", res.UpdatedSources, "errors", len(res.Errors))
	return res, nil
}

func (s *Synchronizer) selectFetchers(names []string) ([]*ResilientFetcher, error) {
	if len(names) == 0 {
		return s.fetchers, nil
	}

	byName := make(map[string]*ResilientFetcher, len(s.fetchers))
	for _, f := range s.fetchers {
		byName[f.Name()] = f
	}

	out := make([]*ResilientFetcher, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown rate source %q", name)
		}
		out = append(out, f)
	}
	return out, nil
}

// appendHistory writes one journal entry per merged pair. History is an
// audit trail; a write failure is logged but does not fail the sync that
// already replaced the snapshot.
func (s *Synchronizer) appendHistory(merged map[string]Record, syncSources []string) {
	if s.journal == nil {
		return
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec := merged[key]
		pair, err := market.ParsePairKey(key)
		if err != nil {
			continue
		}
		entry := journal.RateEntry{
			ID:           id.New(),
			FromCurrency: pair.From,
			ToCurrency:   pair.To,
			Rate:         rec.Rate,
			Timestamp:    rec.UpdatedAt,
			Source:       rec.Source,
			SyncSources:  syncSources,
		}
		if err := s.journal.RecordRate(entry); err != nil {
			s.logger.Error("append rate history", "pair", key, "error", err)
		}
	}
}

func sortedKeys(pairs map[market.PairKey]float64) []market.PairKey {
	keys := make([]market.PairKey, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

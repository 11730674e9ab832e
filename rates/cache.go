package rates

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valutatrade/hub/market"
	"github.com/valutatrade/hub/store"
)

// SnapshotKey is the store key the merged rate view is persisted under.
const SnapshotKey = "rates"

// Record is the cached rate for one pair. Records are replaced wholesale on
// each successful sync, never mutated in place.
type Record struct {
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
}

// Snapshot is the persisted view of all pairs. Readers never observe a
// partially written snapshot; persistence goes through the store's atomic
// rename.
type Snapshot struct {
	Pairs       map[string]Record `json:"pairs"`
	LastRefresh *time.Time        `json:"last_refresh"`
}

// Resolved is the outcome of a rate lookup.
type Resolved struct {
	From      string
	To        string
	Rate      float64
	UpdatedAt time.Time
	Source    string
	IsDirect  bool
}

// Cache holds the merged rate snapshot and answers freshness and resolution
// queries. All reads take the read lock; Replace is the only writer.
type Cache struct {
	mu    sync.RWMutex
	store *store.Store
	snap  Snapshot

	now func() time.Time
}

// NewCache loads the persisted snapshot if one exists. A corrupt snapshot is
// logged and discarded rather than surfaced: the next sync rewrites it.
func NewCache(st *store.Store, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{
		store: st,
		snap:  Snapshot{Pairs: map[string]Record{}},
		now:   time.Now,
	}

	var snap Snapshot
	ok, err := st.LoadJSON(SnapshotKey, &snap)
	if err != nil {
		logger.Warn("rate snapshot unreadable, starting empty", "error", err)
		return c, nil
	}
	if ok {
		if snap.Pairs == nil {
			snap.Pairs = map[string]Record{}
		}
		c.snap = snap
	}
	return c, nil
}

// Fresh reports whether the snapshot was refreshed within ttl. A refresh
// timestamp in the future counts as stale so a corrective sync is forced.
func (c *Cache) Fresh(ttl time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap.LastRefresh == nil {
		return false
	}
	now := c.now()
	last := *c.snap.LastRefresh
	if last.After(now) {
		return false
	}
	return now.Sub(last) < ttl
}

// LastRefresh returns the time of the last successful sync.
func (c *Cache) LastRefresh() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap.LastRefresh == nil {
		return time.Time{}, false
	}
	return *c.snap.LastRefresh, true
}

// Len returns the number of cached pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snap.Pairs)
}

// Snapshot returns a copy of the current snapshot.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pairs := make(map[string]Record, len(c.snap.Pairs))
	for k, v := range c.snap.Pairs {
		pairs[k] = v
	}
	out := Snapshot{Pairs: pairs}
	if c.snap.LastRefresh != nil {
		t := *c.snap.LastRefresh
		out.LastRefresh = &t
	}
	return out
}

// Resolve finds a rate for from -> to: direct entry first, then the inverse
// entry (1/rate), then a single triangulation through the hub currency.
func (c *Cache) Resolve(from, to string) (Resolved, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if from == to {
		return Resolved{From: from, To: to, Rate: 1.0, UpdatedAt: c.now(), Source: "identity", IsDirect: true}, nil
	}

	if r, ok := c.lookupLocked(from, to); ok {
		return r, nil
	}

	// Triangulate through the hub, at most one indirection level. Pairs
	// touching the hub itself never triangulate.
	if from != market.Hub && to != market.Hub {
		a, okA := c.lookupLocked(from, market.Hub)
		b, okB := c.lookupLocked(market.Hub, to)
		if okA && okB {
			updated := a.UpdatedAt
			if b.UpdatedAt.Before(updated) {
				updated = b.UpdatedAt
			}
			return Resolved{
				From:      from,
				To:        to,
				Rate:      a.Rate * b.Rate,
				UpdatedAt: updated,
				Source:    fmt.Sprintf("cross:%s", market.Hub),
				IsDirect:  false,
			}, nil
		}
	}

	return Resolved{}, &RateUnavailableError{From: from, To: to}
}

// lookupLocked tries the direct and inverse entries only. Callers hold at
// least the read lock.
func (c *Cache) lookupLocked(from, to string) (Resolved, bool) {
	if rec, ok := c.snap.Pairs[market.PairKey{From: from, To: to}.String()]; ok {
		return Resolved{From: from, To: to, Rate: rec.Rate, UpdatedAt: rec.UpdatedAt, Source: rec.Source, IsDirect: true}, true
	}
	if rec, ok := c.snap.Pairs[market.PairKey{From: to, To: from}.String()]; ok {
		return Resolved{From: from, To: to, Rate: 1 / rec.Rate, UpdatedAt: rec.UpdatedAt, Source: rec.Source, IsDirect: false}, true
	}
	return Resolved{}, false
}

// Replace persists snap atomically and swaps it in. Persist and swap are one
// critical section: no reader or competing writer can interleave between the
// rename and the in-memory update.
func (c *Cache) Replace(snap Snapshot) error {
	if snap.Pairs == nil {
		snap.Pairs = map[string]Record{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SaveJSON(SnapshotKey, snap); err != nil {
		return fmt.Errorf("persist rate snapshot: %w", err)
	}
	c.snap = snap
	return nil
}

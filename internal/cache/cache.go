// Package cache stores compilation results keyed by content hash.
//
// The cache is an optimization, never a correctness dependency: lookups
// self-heal by deleting corrupt or expired records, and write failures
// are swallowed so callers never observe them. Expiry is lazy (enforced
// at read time) with EvictExpired available for proactive maintenance.
//
// Two backends satisfy the same contract: a file store with one
// <key>.json record per entry, and an embedded BoltDB store for
// deployments that prefer a single database file.
package cache

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// backend is the record-level storage contract shared by the file and
// bolt implementations. Per-record atomicity is all the cache relies
// on; there is no cross-key locking.
type backend interface {
	get(key string) (data []byte, ok bool, err error)
	put(key string, data []byte) error
	delete(key string) error
	// scan visits every record once. Unreadable records are reported
	// with nil data so the caller can count or remove them; a scan
	// never aborts on a single bad record.
	scan(visit func(key string, data []byte, size int64)) error
	clear() (int, error)
	close() error
}

// Cache is a key/value store of compilation results with optional
// per-entry expiry.
type Cache struct {
	store backend
	log   *zap.Logger
}

func newCache(store backend, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{store: store, log: logger}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.close()
}

// Lookup returns the cached result for key, or ok=false on a miss.
// Expired and corrupt records are deleted on the way out. Hits are
// annotated with "cached": true for caller visibility.
func (c *Cache) Lookup(key string) (map[string]any, bool) {
	data, ok, err := c.store.get(key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		_ = c.store.delete(key)
		return nil, false
	}

	if !ok {
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Result == nil {
		_ = c.store.delete(key)
		return nil, false
	}

	if rec.expired(time.Now()) {
		_ = c.store.delete(key)
		return nil, false
	}

	rec.Result["cached"] = true

	return rec.Result, true
}

// Store writes an entry without expiry. Last write wins.
func (c *Cache) Store(key string, result map[string]any) {
	c.write(key, result, nil)
}

// StoreWithTTL writes an entry that expires ttl from now. A zero or
// negative ttl produces an already-expired entry.
func (c *Cache) StoreWithTTL(key string, result map[string]any, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)
	c.write(key, result, &expiresAt)
}

// write swallows all failures: a missed cache write costs one
// recompilation, nothing more.
func (c *Cache) write(key string, result map[string]any, expiresAt *time.Time) {
	rec := record{
		Result:    result,
		CachedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.store.put(key, data); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// EvictExpired deletes every entry whose expiry has passed, plus any
// unreadable record found along the way. Returns the number removed.
func (c *Cache) EvictExpired() int {
	now := time.Now()

	var stale []string
	err := c.store.scan(func(key string, data []byte, _ int64) {
		var rec record
		if data == nil || json.Unmarshal(data, &rec) != nil {
			stale = append(stale, key)
			return
		}

		if rec.expired(now) {
			stale = append(stale, key)
		}
	})
	if err != nil {
		c.log.Warn("cache scan failed", zap.Error(err))
		return 0
	}

	count := 0
	for _, key := range stale {
		if c.store.delete(key) == nil {
			count++
		}
	}

	return count
}

// Clear deletes every entry and returns the number removed.
func (c *Cache) Clear() int {
	count, err := c.store.clear()
	if err != nil {
		c.log.Warn("cache clear failed", zap.Error(err))
	}

	return count
}

// ComputeStats takes a consistent snapshot via one full scan. Expiry is
// judged against the time of the scan; unreadable records count as
// expired.
func (c *Cache) ComputeStats() Stats {
	now := time.Now()

	var stats Stats
	err := c.store.scan(func(_ string, data []byte, size int64) {
		stats.TotalEntries++
		stats.TotalSizeBytes += size

		var rec record
		if data == nil || json.Unmarshal(data, &rec) != nil {
			stats.ExpiredEntries++
			return
		}

		if rec.expired(now) {
			stats.ExpiredEntries++
		}
	})
	if err != nil {
		c.log.Warn("cache scan failed", zap.Error(err))
	}

	return stats
}

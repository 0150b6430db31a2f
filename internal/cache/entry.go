package cache

import "time"

// record is the durable form of a single cache entry.
type record struct {
	// Result is the cached compilation payload, stored opaquely.
	Result map[string]any `json:"result"`

	// CachedAt is when the entry was written.
	CachedAt time.Time `json:"cached_at"`

	// ExpiresAt, when set, is the instant the entry becomes stale.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// expired reports whether the entry is stale at the given instant.
// Entries without an expiry never expire.
func (r *record) expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// Stats describes the state of the cache at the time of one full scan.
type Stats struct {
	TotalEntries   int   `json:"total_entries"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
	ExpiredEntries int   `json:"expired_entries"`
}

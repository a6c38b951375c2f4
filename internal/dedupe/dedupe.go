// Package dedupe suppresses duplicate inbound updates. Long polling
// redelivers unacknowledged updates after a restart, and each one would
// otherwise write a second ledger row.
package dedupe

import (
	"context"
	"sync"
	"time"
)

// Deduper reports whether a message key was already processed within the
// retention window. The first call for a key returns false and marks it.
type Deduper interface {
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryDeduper keeps seen keys in process memory. It covers single-process
// deployments; duplicates across restarts need the Redis backend.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time)}
}

func (d *MemoryDeduper) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[key]; ok && now.Before(expiry) {
		return true, nil
	}
	d.seen[key] = now.Add(ttl)

	// opportunistic sweep keeps the map from growing unbounded
	if len(d.seen) > 10000 {
		for k, expiry := range d.seen {
			if now.After(expiry) {
				delete(d.seen, k)
			}
		}
	}

	return false, nil
}

package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type window struct {
	hits []time.Time
}

// MemoryLimiter is the in-process fallback used when Redis is disabled. It
// keeps a sliding window of hit timestamps per sender.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	log     *slog.Logger
}

func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string]*window),
		log:     log,
	}
}

// Check enforces a sliding-window limit for the sender.
func (m *MemoryLimiter) Check(_ context.Context, senderID string, limit int, span time.Duration) (*Result, error) {
	now := time.Now()
	start := now.Add(-span)

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[senderID]
	if !ok {
		w = &window{hits: make([]time.Time, 0, 8)}
		m.windows[senderID] = w
	}

	w.hits = dropBefore(w.hits, start)
	count := len(w.hits)

	allowed := count < limit
	if allowed {
		w.hits = append(w.hits, now)
		count++
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   start.Add(span),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}
	return result, nil
}

// Cleanup drops windows whose last hit is older than maxAge. Called
// periodically by the cleaner so idle senders do not pin memory.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	for senderID, w := range m.windows {
		if len(w.hits) == 0 || w.hits[len(w.hits)-1].Before(cutoff) {
			delete(m.windows, senderID)
		}
	}
}

func dropBefore(hits []time.Time, start time.Time) []time.Time {
	first := 0
	for first < len(hits) && hits[first].Before(start) {
		first++
	}

	switch {
	case first == 0:
		return hits
	case first >= len(hits):
		return hits[:0]
	default:
		copy(hits, hits[first:])
		return hits[:len(hits)-first]
	}
}

package session

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner expires abandoned registrations: a sender who typed the
// registration keyword and never sent a name. Redis sessions expire via
// their native TTL; the cleaner covers stores that enumerate in memory.
type Cleaner struct {
	store    Store
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(store Store, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		store:    store,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	enumerable, ok := c.store.(Enumerable)
	if !ok {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx, enumerable)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context, enumerable Enumerable) {
	if ctx.Err() != nil {
		return
	}

	sessions, err := enumerable.All(ctx)
	if err != nil {
		c.log.Error("session cleaner failed to list sessions", slog.Any("error", err))
		return
	}

	for _, sess := range sessions {
		if time.Since(sess.UpdatedAt) <= c.ttl {
			continue
		}

		if err := c.store.Clear(ctx, sess.SenderID); err != nil {
			c.log.Error("session cleaner failed to clear session", slog.String("sender_id", sess.SenderID), slog.Any("error", err))
			continue
		}

		c.log.Info("stale registration session cleared", slog.String("sender_id", sess.SenderID))
	}
}

package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically evicts idle senders from a MemoryLimiter.
type Cleaner struct {
	limiter  *MemoryLimiter
	interval time.Duration
	maxAge   time.Duration
	log      *slog.Logger
}

func NewCleaner(limiter *MemoryLimiter, interval, maxAge time.Duration, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		limiter:  limiter,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
	}
}

// Run blocks until ctx is canceled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.limiter == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("rate limit cleaner stopped")
			return
		case <-ticker.C:
			c.limiter.Cleanup(c.maxAge)
		}
	}
}

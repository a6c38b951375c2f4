// Package ratelimit throttles inbound messages per sender id so one noisy
// number cannot monopolize the bot.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter describes a rate-limiting strategy.
type Limiter interface {
	Check(ctx context.Context, senderID string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded indicates the sender has used up their window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

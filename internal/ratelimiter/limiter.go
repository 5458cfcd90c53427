package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// MailLimiter is a token bucket in front of the mail provider.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type MailLimiter struct {
	limiter *rate.Limiter
}

// New creates a MailLimiter granting ratePerSec sends per second.
func New(ratePerSec int) *MailLimiter {
	return &MailLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until the limiter grants a token. Called immediately before
// each mail dispatch. Returns a non-nil error only if ctx is cancelled or
// its deadline would pass before a token becomes available.
func (l *MailLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

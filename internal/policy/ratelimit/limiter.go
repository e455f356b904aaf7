// Package ratelimit implements the token bucket gate shared by every wiki request.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/noplp-songs/internal/metrics"
)

// Config holds rate gate configuration.
type Config struct {
	RPS   float64
	Burst int
}

// Gate admits requests at a fixed rate. A single Gate is shared by all
// concurrent fetches so the overall request rate stays bounded.
type Gate struct {
	limiter *rate.Limiter
}

// New creates a new Gate. A non-positive RPS disables limiting.
func New(cfg Config) *Gate {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Gate{limiter: rate.NewLimiter(r, burst)}
}

// Wait blocks until the gate admits one request, respecting the context.
func (g *Gate) Wait(ctx context.Context) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	// Immediate admissions are not delays.
	if d := time.Since(start); d > time.Millisecond {
		metrics.ObserveRateLimitDelay(d)
	}
	return nil
}

// Limit reports the configured rate.
func (g *Gate) Limit() rate.Limit {
	return g.limiter.Limit()
}

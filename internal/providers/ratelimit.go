package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter sized in requests per second.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerSecond float64

	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	totalWaited   time.Duration
}

// NewRateLimiter creates a rate limiter allowing rps requests per second.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = 6.0
	}
	return &RateLimiter{
		requestsPerSecond: rps,
		tokens:            rps,
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		tokensNeeded := 1.0 - r.tokens
		waitTime := time.Duration(tokensNeeded / r.requestsPerSecond * float64(time.Second))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			r.mu.Lock()
			r.totalWaited += waitTime
			r.mu.Unlock()
		}
	}
}

// TryConsume attempts to consume a token without blocking.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1.0 {
		r.tokens--
		r.totalConsumed++
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	r.tokens += elapsed * r.requestsPerSecond
	if r.tokens > r.requestsPerSecond {
		r.tokens = r.requestsPerSecond
	}
}

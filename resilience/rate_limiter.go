// Package resilience provides rate limiting and circuit breaking for
// registry traffic.
//
// Batch operations and resolve walks can fan out many requests to one
// registry host; the limiter keeps the engine inside public registry rate
// limits and the breaker stops hammering a registry that is failing.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimitExceeded is returned when a non-blocking check fails.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// TokenBucketConfig holds token bucket configuration.
type TokenBucketConfig struct {
	// Capacity is the maximum burst size.
	Capacity int

	// RefillRate is tokens added per second.
	RefillRate float64
}

// DefaultTokenBucketConfig returns the default limiter configuration:
// 20 request burst, 10 req/s sustained. Conservative enough for the public
// registries (npm, PyPI, crates.io, RubyGems).
func DefaultTokenBucketConfig() TokenBucketConfig {
	return TokenBucketConfig{
		Capacity:   20,
		RefillRate: 10.0,
	}
}

// TokenBucket implements the token bucket rate limiting algorithm.
type TokenBucket struct {
	mu sync.Mutex

	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a full token bucket.
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	return &TokenBucket{
		capacity:   config.Capacity,
		refillRate: config.RefillRate,
		tokens:     float64(config.Capacity),
		lastRefill: time.Now(),
	}
}

// refill adds tokens based on elapsed time. Caller must hold the lock.
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}
}

// Allow checks if a request can proceed without blocking.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tb.nextTokenIn()):
		}
	}
}

// nextTokenIn estimates how long until one token is available.
func (tb *TokenBucket) nextTokenIn() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	deficit := 1.0 - tb.tokens
	if deficit <= 0 {
		return 0
	}
	return time.Duration(deficit / tb.refillRate * float64(time.Second))
}

// Tokens returns the current number of available tokens.
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

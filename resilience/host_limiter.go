package resilience

import (
	"context"
	"strconv"
	"sync"

	"github.com/unipkg/unipkg/observability"
)

// HostLimiter manages a separate token bucket per registry host.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*TokenBucket
	config   TokenBucketConfig
}

// NewHostLimiter creates a per-host rate limiter.
func NewHostLimiter(config TokenBucketConfig) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*TokenBucket),
		config:   config,
	}
}

// getLimiter returns the bucket for a host, creating it if needed.
func (hl *HostLimiter) getLimiter(host string) *TokenBucket {
	hl.mu.RLock()
	limiter, exists := hl.limiters[host]
	hl.mu.RUnlock()
	if exists {
		return limiter
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	if limiter, exists = hl.limiters[host]; exists {
		return limiter
	}
	limiter = NewTokenBucket(hl.config)
	hl.limiters[host] = limiter
	return limiter
}

// Allow checks if a request to host can proceed without blocking.
func (hl *HostLimiter) Allow(host string) bool {
	allowed := hl.getLimiter(host).Allow()
	observability.RateLimitRequestsTotal.WithLabelValues(host, strconv.FormatBool(allowed)).Inc()
	return allowed
}

// Wait blocks until the host's bucket has a token or ctx is cancelled.
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	err := hl.getLimiter(host).Wait(ctx)
	observability.RateLimitRequestsTotal.WithLabelValues(host, strconv.FormatBool(err == nil)).Inc()
	return err
}

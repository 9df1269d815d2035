package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/unipkg/unipkg/observability"
	"github.com/unipkg/unipkg/resilience"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultDialTimeout = 10 * time.Second
	DefaultUserAgent   = "unipkg/0.1.0"
)

// StatusError is returned for non-2xx registry responses that are not
// retriable.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// NotFound reports whether the response was a 404.
func (e *StatusError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Client wraps http.Client with registry-oriented behavior: retry with
// backoff, per-host rate limiting, and circuit breaking.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	retryConfig *RetryConfig
	logger      observability.Logger
	breakers    *resilience.HostBreakers
	limiter     *resilience.HostLimiter
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout              time.Duration
	DialTimeout          time.Duration
	UserAgent            string
	RetryConfig          *RetryConfig
	Logger               observability.Logger             // nil uses NullLogger
	CircuitBreakerConfig *resilience.CircuitBreakerConfig // nil disables
	RateLimiterConfig    *resilience.TokenBucketConfig    // nil disables
}

// DefaultConfig returns a client configuration with sensible defaults,
// including rate limiting and circuit breaking suitable for public
// registries.
func DefaultConfig() *Config {
	cb := resilience.DefaultCircuitBreakerConfig()
	rl := resilience.DefaultTokenBucketConfig()
	return &Config{
		Timeout:              DefaultTimeout,
		DialTimeout:          DefaultDialTimeout,
		UserAgent:            DefaultUserAgent,
		RetryConfig:          DefaultRetryConfig(),
		CircuitBreakerConfig: &cb,
		RateLimiterConfig:    &rl,
	}
}

// NewClient creates a new registry HTTP client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		retryConfig: cfg.RetryConfig,
		logger:      logger,
	}

	if cfg.CircuitBreakerConfig != nil {
		c.breakers = resilience.NewHostBreakers(*cfg.CircuitBreakerConfig)
	}
	if cfg.RateLimiterConfig != nil {
		c.limiter = resilience.NewHostLimiter(*cfg.RateLimiterConfig)
	}

	return c
}

// Get performs a GET request with retry, rate limiting, and circuit
// breaking. The caller owns the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	host := req.URL.Host

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, host); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var breaker *resilience.CircuitBreaker
	if c.breakers != nil {
		breaker = c.breakers.For(host)
		if err := breaker.CanExecute(); err != nil {
			return nil, err
		}
	}

	resp, err := c.doWithRetry(ctx, req)
	if breaker != nil {
		if err != nil {
			breaker.RecordFailure()
		} else {
			breaker.RecordSuccess()
		}
	}
	return resp, err
}

// doWithRetry executes the request, retrying transient failures.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	var resp *http.Response

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		start := time.Now()
		resp, lastErr = c.httpClient.Do(req.Clone(ctx))
		duration := time.Since(start)

		if lastErr == nil {
			observability.HTTPRequestsTotal.WithLabelValues(
				req.Method, fmt.Sprintf("%d", resp.StatusCode), req.URL.Host).Inc()
			observability.HTTPRequestDuration.WithLabelValues(
				req.Method, req.URL.Host).Observe(duration.Seconds())

			if !IsRetriableStatus(resp.StatusCode) {
				c.logger.DebugContext(ctx, "HTTP {Method} {URL} -> {StatusCode} ({Duration}ms)",
					req.Method, req.URL.String(), resp.StatusCode, duration.Milliseconds())
				return resp, nil
			}
		} else {
			observability.HTTPRequestsTotal.WithLabelValues(req.Method, "error", req.URL.Host).Inc()
			if !IsRetriable(lastErr) {
				c.logger.WarnContext(ctx, "HTTP {Method} {URL} failed: {Error}",
					req.Method, req.URL.String(), lastErr)
				return nil, lastErr
			}
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		var backoff time.Duration
		if resp != nil {
			backoff = ParseRetryAfter(resp.Header.Get("Retry-After"))
			_ = resp.Body.Close()
		}
		if backoff == 0 {
			backoff = c.retryConfig.CalculateBackoff(attempt)
		}

		c.logger.DebugContext(ctx, "HTTP {Method} {URL} retry {Attempt}/{MaxRetries} after {Backoff}ms",
			req.Method, req.URL.String(), attempt+1, c.retryConfig.MaxRetries, backoff.Milliseconds())

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
	}
	return resp, nil
}

// GetJSON fetches a URL and decodes the response body into v.
// Non-2xx responses return a *StatusError.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetBytes fetches a URL and returns the raw response body.
// Non-2xx responses return a *StatusError.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

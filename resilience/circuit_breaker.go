package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/unipkg/unipkg/observability"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	StateClosed   CircuitState = iota // normal operation
	StateOpen                         // failing, reject requests
	StateHalfOpen                     // probing whether the host recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds circuit breaker configuration.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures uint

	// Timeout is how long to stay Open before probing Half-Open.
	Timeout time.Duration
}

// DefaultCircuitBreakerConfig returns default configuration.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// CircuitBreaker implements the three-state circuit breaker pattern for one
// registry host.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	host   string

	mu          sync.Mutex
	state       CircuitState
	failures    uint
	lastFailure time.Time
	probing     bool
}

// NewCircuitBreaker creates a closed breaker for a host.
func NewCircuitBreaker(host string, config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{config: config, host: host, state: StateClosed}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CanExecute checks if a request can proceed.
func (cb *CircuitBreaker) CanExecute() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.lastFailure) < cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.probing = false
		fallthrough

	case StateHalfOpen:
		// One probe request at a time.
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		return nil

	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.probing = false
	cb.setState(StateClosed)
}

// RecordFailure records a failed operation.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		// A failed probe re-opens immediately.
		cb.probing = false
		cb.setState(StateOpen)
	}
}

// setState transitions state and updates the gauge. Caller holds the lock.
func (cb *CircuitBreaker) setState(s CircuitState) {
	cb.state = s
	observability.CircuitBreakerState.WithLabelValues(cb.host).Set(float64(s))
}

// HostBreakers manages a circuit breaker per registry host.
type HostBreakers struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	config   CircuitBreakerConfig
}

// NewHostBreakers creates a per-host breaker set.
func NewHostBreakers(config CircuitBreakerConfig) *HostBreakers {
	return &HostBreakers{
		breakers: make(map[string]*CircuitBreaker),
		config:   config,
	}
}

// For returns the breaker for a host, creating it if needed.
func (hb *HostBreakers) For(host string) *CircuitBreaker {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	cb, ok := hb.breakers[host]
	if !ok {
		cb = NewCircuitBreaker(host, hb.config)
		hb.breakers[host] = cb
	}
	return cb
}

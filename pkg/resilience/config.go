package resilience

import (
	"time"
)

// ResilientConfig configures resilience features for the accounts API.
type ResilientConfig struct {
	// Name identifies the breaker in logs, metrics and /status
	Name string `toml:"name"`

	// Timeout bounds every call. 0 disables the per-call timeout.
	Timeout time.Duration `toml:"timeout" env:"BANKADMIN_API_CALL_TIMEOUT" validate:"min=0"`

	// CircuitBreakerConfig configures the circuit breaker behavior
	CircuitBreakerConfig CircuitBreakerConfig `toml:"breaker"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxRequests is the maximum number of requests allowed to pass through
	// when the CircuitBreaker is half-open. Default: 1
	MaxRequests uint32 `toml:"max_requests" validate:"min=1"`

	// Interval is the cyclic period of the closed state for the CircuitBreaker
	// to clear the internal counts. If Interval is 0, it never clears. Default: 0
	Interval time.Duration `toml:"interval" env:"BANKADMIN_BREAKER_INTERVAL" validate:"min=0"`

	// Timeout is the period of the open state after which the state becomes half-open.
	// Default: 30s
	Timeout time.Duration `toml:"open_timeout" env:"BANKADMIN_BREAKER_OPEN_TIMEOUT" validate:"min=0"`

	// FailureThreshold is the number of consecutive backend failures that
	// trips the breaker when ReadyToTrip is nil. Default: 5
	FailureThreshold uint32 `toml:"failure_threshold" validate:"min=1"`

	// ReadyToTrip is called with a copy of Counts whenever a request fails.
	// If ReadyToTrip returns true, the CircuitBreaker will be placed into the open state.
	// If nil, FailureThreshold consecutive failures trip it.
	ReadyToTrip func(counts Counts) bool `toml:"-"`
}

// Counts holds the numbers of requests and their successes/failures.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// DefaultResilientConfig returns sensible defaults for resilience configuration.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Name:    "accounts-api",
		Timeout: 5 * time.Second,
		CircuitBreakerConfig: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         0,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c ResilientConfig) WithTimeout(timeout time.Duration) ResilientConfig {
	c.Timeout = timeout
	return c
}

// WithCircuitBreakerTimeout returns a copy of the config with the specified circuit breaker timeout.
func (c ResilientConfig) WithCircuitBreakerTimeout(timeout time.Duration) ResilientConfig {
	c.CircuitBreakerConfig.Timeout = timeout
	return c
}

// WithFailureThreshold returns a copy of the config that trips after n
// consecutive failures.
func (c ResilientConfig) WithFailureThreshold(n uint32) ResilientConfig {
	c.CircuitBreakerConfig.FailureThreshold = n
	return c
}

func (c CircuitBreakerConfig) readyToTrip(counts Counts) bool {
	if c.ReadyToTrip != nil {
		return c.ReadyToTrip(counts)
	}
	threshold := c.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return counts.ConsecutiveFailures >= threshold
}

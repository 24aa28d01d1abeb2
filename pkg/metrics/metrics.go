package metrics

import (
	"time"
)

// MetricsCollector defines the interface for collecting accounts-client metrics.
// Implementations can export metrics to various backends (Prometheus, in-memory).
type MetricsCollector interface {
	// Accounts API calls. outcome is a short classification such as
	// "ok", "not_found" or "unreachable".
	RecordRequest(operation string, outcome string, duration time.Duration)

	// Circuit breaker
	RecordCircuitState(name string, state CircuitState)

	// Mirror cache. kind is "list" or "account".
	RecordCacheLookup(kind string, hit bool)
	RecordCacheInvalidation(operation string)

	// Mirror warm-up writer
	RecordQueueDepth(depth int)
	RecordWarmDropped()
	RecordWarmWrite(success bool, duration time.Duration)

	// Front ends. form is "create" or "update".
	RecordValidationFailure(form string)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is allowing requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is blocking requests.
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is testing if the backend has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is a no-op implementation of MetricsCollector.
// It's used as the default collector when metrics are not needed.
type NoOpCollector struct{}

// RecordRequest does nothing.
func (NoOpCollector) RecordRequest(operation string, outcome string, duration time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(name string, state CircuitState) {}

// RecordCacheLookup does nothing.
func (NoOpCollector) RecordCacheLookup(kind string, hit bool) {}

// RecordCacheInvalidation does nothing.
func (NoOpCollector) RecordCacheInvalidation(operation string) {}

// RecordQueueDepth does nothing.
func (NoOpCollector) RecordQueueDepth(depth int) {}

// RecordWarmDropped does nothing.
func (NoOpCollector) RecordWarmDropped() {}

// RecordWarmWrite does nothing.
func (NoOpCollector) RecordWarmWrite(success bool, duration time.Duration) {}

// RecordValidationFailure does nothing.
func (NoOpCollector) RecordValidationFailure(form string) {}

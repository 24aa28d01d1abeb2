package memory

import (
	"sync"
	"time"

	"bank-admin/pkg/metrics"
)

// MemoryCollector implements MetricsCollector in memory. It backs tests
// and the /metrics/json endpoint.
type MemoryCollector struct {
	mu sync.RWMutex

	// Per-operation metrics
	operations map[string]*OperationMetrics

	// Circuit breaker state by breaker name
	circuits     map[string]metrics.CircuitState
	circuitOpens map[string]int64

	// Mirror
	cacheHits          map[string]int64
	cacheMisses        map[string]int64
	cacheInvalidations map[string]int64

	// Warm-up writer
	queueDepth  int
	warmDropped int64
	warmWrites  int64
	warmErrors  int64
	warmLatency []time.Duration

	// Front ends
	validationFailures map[string]int64
}

// OperationMetrics holds metrics for a single accounts API operation.
type OperationMetrics struct {
	Requests  int64
	Outcomes  map[string]int64
	Latencies []time.Duration
}

// NewMemoryCollector creates a new in-memory metrics collector.
func NewMemoryCollector() *MemoryCollector {
	mc := &MemoryCollector{}
	mc.reset()
	return mc
}

func (mc *MemoryCollector) reset() {
	mc.operations = make(map[string]*OperationMetrics)
	mc.circuits = make(map[string]metrics.CircuitState)
	mc.circuitOpens = make(map[string]int64)
	mc.cacheHits = make(map[string]int64)
	mc.cacheMisses = make(map[string]int64)
	mc.cacheInvalidations = make(map[string]int64)
	mc.validationFailures = make(map[string]int64)
	mc.queueDepth = 0
	mc.warmDropped = 0
	mc.warmWrites = 0
	mc.warmErrors = 0
	mc.warmLatency = nil
}

// RecordRequest records an accounts API call.
func (mc *MemoryCollector) RecordRequest(operation string, outcome string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	om, ok := mc.operations[operation]
	if !ok {
		om = &OperationMetrics{Outcomes: make(map[string]int64)}
		mc.operations[operation] = om
	}
	om.Requests++
	om.Outcomes[outcome]++
	om.Latencies = append(om.Latencies, duration)
}

// RecordCircuitState records the current circuit breaker state.
func (mc *MemoryCollector) RecordCircuitState(name string, state metrics.CircuitState) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	old := mc.circuits[name]
	mc.circuits[name] = state

	// Count transitions to open
	if old != metrics.CircuitOpen && state == metrics.CircuitOpen {
		mc.circuitOpens[name]++
	}
}

// RecordCacheLookup records a mirror lookup.
func (mc *MemoryCollector) RecordCacheLookup(kind string, hit bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if hit {
		mc.cacheHits[kind]++
	} else {
		mc.cacheMisses[kind]++
	}
}

// RecordCacheInvalidation records a mirror invalidation caused by a mutation.
func (mc *MemoryCollector) RecordCacheInvalidation(operation string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cacheInvalidations[operation]++
}

// RecordQueueDepth records the current warm-up queue depth.
func (mc *MemoryCollector) RecordQueueDepth(depth int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.queueDepth = depth
}

// RecordWarmDropped records a dropped warm-up write.
func (mc *MemoryCollector) RecordWarmDropped() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.warmDropped++
}

// RecordWarmWrite records a warm-up write.
func (mc *MemoryCollector) RecordWarmWrite(success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.warmWrites++
	if !success {
		mc.warmErrors++
	}
	mc.warmLatency = append(mc.warmLatency, duration)
}

// RecordValidationFailure records a form rejected by client-side checks.
func (mc *MemoryCollector) RecordValidationFailure(form string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.validationFailures[form]++
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	Requests           map[string]int64            `json:"requests"`
	Outcomes           map[string]map[string]int64 `json:"outcomes"`
	Circuits           map[string]string           `json:"circuits"`
	CircuitOpens       map[string]int64            `json:"circuit_opens"`
	CacheHits          map[string]int64            `json:"cache_hits"`
	CacheMisses        map[string]int64            `json:"cache_misses"`
	CacheInvalidations map[string]int64            `json:"cache_invalidations"`
	QueueDepth         int                         `json:"queue_depth"`
	WarmDropped        int64                       `json:"warm_dropped"`
	WarmWrites         int64                       `json:"warm_writes"`
	WarmErrors         int64                       `json:"warm_errors"`
	ValidationFailures map[string]int64            `json:"validation_failures"`
}

// Snapshot returns a copy of the current metrics state.
func (mc *MemoryCollector) Snapshot() Snapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	s := Snapshot{
		Requests:           make(map[string]int64, len(mc.operations)),
		Outcomes:           make(map[string]map[string]int64, len(mc.operations)),
		Circuits:           make(map[string]string, len(mc.circuits)),
		CircuitOpens:       copyCounts(mc.circuitOpens),
		CacheHits:          copyCounts(mc.cacheHits),
		CacheMisses:        copyCounts(mc.cacheMisses),
		CacheInvalidations: copyCounts(mc.cacheInvalidations),
		QueueDepth:         mc.queueDepth,
		WarmDropped:        mc.warmDropped,
		WarmWrites:         mc.warmWrites,
		WarmErrors:         mc.warmErrors,
		ValidationFailures: copyCounts(mc.validationFailures),
	}
	for op, om := range mc.operations {
		s.Requests[op] = om.Requests
		s.Outcomes[op] = copyCounts(om.Outcomes)
	}
	for name, state := range mc.circuits {
		s.Circuits[name] = state.String()
	}
	return s
}

// Reset clears all collected metrics.
func (mc *MemoryCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.reset()
}

// GetOperationMetrics returns a copy of the metrics for one operation, or nil.
func (mc *MemoryCollector) GetOperationMetrics(operation string) *OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	om, ok := mc.operations[operation]
	if !ok {
		return nil
	}
	cp := OperationMetrics{
		Requests:  om.Requests,
		Outcomes:  copyCounts(om.Outcomes),
		Latencies: append([]time.Duration(nil), om.Latencies...),
	}
	return &cp
}

// CircuitState returns the last recorded state of the named breaker.
func (mc *MemoryCollector) CircuitState(name string) metrics.CircuitState {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return mc.circuits[name]
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

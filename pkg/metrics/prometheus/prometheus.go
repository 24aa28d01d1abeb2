package prometheus

import (
	"time"

	"bank-admin/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector for Prometheus.
type PrometheusCollector struct {
	namespace string

	// Accounts API
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	// Circuit breaker
	circuitOpens *prometheus.CounterVec
	circuitState *prometheus.GaugeVec

	// Mirror
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec

	// Warm-up writer
	queueDepth  prometheus.Gauge
	warmDropped prometheus.Counter
	warmWrites  *prometheus.CounterVec
	warmLatency prometheus.Histogram

	// Front ends
	validationFailures *prometheus.CounterVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of accounts API calls per operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Accounts API call latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"operation"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens",
			},
			[]string{"breaker"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"breaker"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_hits_total",
				Help:      "Total number of mirror cache hits per kind",
			},
			[]string{"kind"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_misses_total",
				Help:      "Total number of mirror cache misses per kind",
			},
			[]string{"kind"},
		),
		cacheInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mirror_invalidations_total",
				Help:      "Total number of mirror invalidations per mutating operation",
			},
			[]string{"operation"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "warm_queue_depth",
				Help:      "Current mirror warm-up queue depth",
			},
		),
		warmDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warm_dropped_total",
				Help:      "Total number of dropped mirror warm-up writes",
			},
		),
		warmWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warm_writes_total",
				Help:      "Total number of mirror warm-up writes",
			},
			[]string{"status"},
		),
		warmLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "warm_write_duration_seconds",
				Help:      "Mirror warm-up write latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Total number of forms rejected by client-side checks",
			},
			[]string{"form"},
		),
	}
}

func (pc *PrometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		pc.requests,
		pc.requestLatency,
		pc.circuitOpens,
		pc.circuitState,
		pc.cacheHits,
		pc.cacheMisses,
		pc.cacheInvalidations,
		pc.queueDepth,
		pc.warmDropped,
		pc.warmWrites,
		pc.warmLatency,
		pc.validationFailures,
	}
}

// Register registers all metrics with the given Prometheus registerer.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	for _, collector := range pc.collectors() {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Describe implements prometheus.Collector.
func (pc *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range pc.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (pc *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, c := range pc.collectors() {
		c.Collect(ch)
	}
}

// RecordRequest records an accounts API call.
func (pc *PrometheusCollector) RecordRequest(operation string, outcome string, duration time.Duration) {
	pc.requests.WithLabelValues(operation, outcome).Inc()
	pc.requestLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCircuitState records the current circuit breaker state.
func (pc *PrometheusCollector) RecordCircuitState(name string, state metrics.CircuitState) {
	pc.circuitState.WithLabelValues(name).Set(float64(state))
	if state == metrics.CircuitOpen {
		pc.circuitOpens.WithLabelValues(name).Inc()
	}
}

// RecordCacheLookup records a mirror lookup.
func (pc *PrometheusCollector) RecordCacheLookup(kind string, hit bool) {
	if hit {
		pc.cacheHits.WithLabelValues(kind).Inc()
	} else {
		pc.cacheMisses.WithLabelValues(kind).Inc()
	}
}

// RecordCacheInvalidation records a mirror invalidation.
func (pc *PrometheusCollector) RecordCacheInvalidation(operation string) {
	pc.cacheInvalidations.WithLabelValues(operation).Inc()
}

// RecordQueueDepth records the current warm-up queue depth.
func (pc *PrometheusCollector) RecordQueueDepth(depth int) {
	pc.queueDepth.Set(float64(depth))
}

// RecordWarmDropped records a dropped warm-up write.
func (pc *PrometheusCollector) RecordWarmDropped() {
	pc.warmDropped.Inc()
}

// RecordWarmWrite records a warm-up write.
func (pc *PrometheusCollector) RecordWarmWrite(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	pc.warmWrites.WithLabelValues(status).Inc()
	pc.warmLatency.Observe(duration.Seconds())
}

// RecordValidationFailure records a form rejected by client-side checks.
func (pc *PrometheusCollector) RecordValidationFailure(form string) {
	pc.validationFailures.WithLabelValues(form).Inc()
}

package console

import (
	"net/http"
	"strconv"
	"time"

	"bank-admin/pkg/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// HTTPMetrics counts console requests and their latency by route template.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates the console request metrics under namespace.
func NewHTTPMetrics(namespace string) *HTTPMetrics {
	return &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "console_http_requests_total",
				Help:      "Total number of console HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "console_http_request_duration_seconds",
				Help:      "Console HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// Register registers the metrics with registry.
func (m *HTTPMetrics) Register(registry prometheus.Registerer) error {
	if err := registry.Register(m.requests); err != nil {
		return err
	}
	return registry.Register(m.duration)
}

// middleware wraps HTTP handlers to collect metrics
func (m *HTTPMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := wrap(w)

		next.ServeHTTP(srw, r)

		endpoint := getEndpoint(r)
		m.requests.WithLabelValues(r.Method, endpoint, strconv.Itoa(srw.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := wrap(w)

			next.ServeHTTP(srw, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", getEndpoint(r)),
				zap.Int("status", srw.statusCode),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusResponseWriter captures the status code
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func wrap(w http.ResponseWriter) *statusResponseWriter {
	if srw, ok := w.(*statusResponseWriter); ok {
		return srw
	}
	return &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// getEndpoint returns a normalized endpoint path for metrics
func getEndpoint(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}

	pathTemplate, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}

	return pathTemplate
}

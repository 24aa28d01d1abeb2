// Package api serves the operations endpoints: health, status and metrics.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"bank-admin/pkg/admin"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/metrics/memory"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BackendChecker reports whether the accounts API is reachable.
type BackendChecker interface {
	CheckBackend(ctx context.Context) admin.Check
}

// Breaker exposes a circuit breaker's state.
type Breaker interface {
	Name() string
	State() metrics.CircuitState
}

// Server provides HTTP endpoints for health checks and monitoring.
type Server struct {
	deps    Deps
	router  *mux.Router
	server  *http.Server
	config  ServerConfig
	logger  *logging.Logger
	started time.Time
}

// Deps are the components the status endpoints report on. Nil fields
// are omitted from the responses.
type Deps struct {
	Checker BackendChecker
	Breaker Breaker
	// MirrorBackend names the mirror store, or "none"
	MirrorBackend string
	// Gatherer backs /metrics
	Gatherer prometheus.Gatherer
	// Memory backs /metrics/json
	Memory *memory.MemoryCollector
}

// ServerConfig holds configuration for the ops server.
type ServerConfig struct {
	// Address to listen on (e.g., ":9090")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// CheckTimeout bounds the backend check made by /status
	CheckTimeout time.Duration
}

// DefaultServerConfig returns a default configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":9090",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		CheckTimeout: 3 * time.Second,
	}
}

// NewServer creates the ops server.
func NewServer(deps Deps, config ServerConfig) *Server {
	if deps.MirrorBackend == "" {
		deps.MirrorBackend = "none"
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = DefaultServerConfig().CheckTimeout
	}

	s := &Server{
		deps:    deps,
		config:  config,
		logger:  logging.Global().Named("api"),
		started: time.Now(),
	}

	r := mux.NewRouter()

	// Health and status endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	// Metrics endpoints
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/metrics/json", s.handleMetricsJSON).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	s.router = r

	s.server = &http.Server{
		Addr:         config.Address,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in a goroutine.
// Listen errors are returned; serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.logger.Info("ops server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("ops server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleHealth returns a simple health check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleStatus checks the backend and reports breaker and mirror state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "running",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"mirror":    s.deps.MirrorBackend,
	}

	if s.deps.Checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.CheckTimeout)
		defer cancel()

		check := s.deps.Checker.CheckBackend(ctx)
		response["backend"] = map[string]interface{}{
			"reachable": check.Reachable,
			"status":    check.Status,
		}
	}

	if s.deps.Breaker != nil {
		response["breaker"] = map[string]interface{}{
			"name":  s.deps.Breaker.Name(),
			"state": s.deps.Breaker.State().String(),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// handleMetrics returns metrics in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Gatherer == nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("# no Prometheus registry configured\n"))
		return
	}
	promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// handleMetricsJSON returns the in-memory metrics snapshot.
func (s *Server) handleMetricsJSON(w http.ResponseWriter, r *http.Request) {
	if s.deps.Memory == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"error": "no in-memory collector configured",
		})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Memory.Snapshot())
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bank-admin/pkg/admin"
	"bank-admin/pkg/client"
	"bank-admin/pkg/client/mock"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/metrics/memory"
	promcollector "bank-admin/pkg/metrics/prometheus"
	"bank-admin/pkg/resilience"

	"github.com/prometheus/client_golang/prometheus"
)

func setupTestServer(t *testing.T, ping func(ctx context.Context) error) (*Server, *memory.MemoryCollector) {
	t.Helper()

	collector := memory.NewMemoryCollector()
	api := &mock.API{PingFunc: ping}
	breaker := resilience.NewResilientAPIWithMetrics(api, resilience.DefaultResilientConfig(), collector)
	svc := admin.NewService(breaker, "http://accounts.test/api/accounts", collector)

	registry := prometheus.NewRegistry()
	pc := promcollector.NewPrometheusCollector("bank_admin")
	if err := pc.Register(registry); err != nil {
		t.Fatalf("Failed to register collector: %v", err)
	}
	pc.RecordRequest(client.OpList, "ok", time.Millisecond)

	server := NewServer(Deps{
		Checker:       svc,
		Breaker:       breaker,
		MirrorBackend: "memory",
		Gatherer:      registry,
		Memory:        collector,
	}, DefaultServerConfig())

	return server, collector
}

func get(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var response map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		json.NewDecoder(w.Body).Decode(&response)
	}
	return w, response
}

func TestServer_Health(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	w, response := get(t, server, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if response["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", response["status"])
	}
}

func TestServer_Status(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	w, response := get(t, server, http.MethodGet, "/status")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if response["status"] != "running" {
		t.Errorf("Expected status running, got %v", response["status"])
	}
	if response["mirror"] != "memory" {
		t.Errorf("Expected mirror memory, got %v", response["mirror"])
	}

	backend, _ := response["backend"].(map[string]interface{})
	if backend["reachable"] != true {
		t.Errorf("Expected backend reachable, got %v", backend["reachable"])
	}
	if backend["status"] != admin.StatusReachable {
		t.Errorf("Expected backend status %q, got %v", admin.StatusReachable, backend["status"])
	}

	breaker, _ := response["breaker"].(map[string]interface{})
	if breaker["name"] != "accounts-api" {
		t.Errorf("Expected breaker accounts-api, got %v", breaker["name"])
	}
	if breaker["state"] != metrics.CircuitClosed.String() {
		t.Errorf("Expected breaker closed, got %v", breaker["state"])
	}
}

func TestServer_Status_BackendDown(t *testing.T) {
	server, _ := setupTestServer(t, func(ctx context.Context) error {
		return &client.TransportError{Op: client.OpPing, Err: errors.New("connection refused")}
	})

	_, response := get(t, server, http.MethodGet, "/status")

	backend, _ := response["backend"].(map[string]interface{})
	if backend["reachable"] != false {
		t.Errorf("Expected backend unreachable, got %v", backend["reachable"])
	}
	if backend["status"] != admin.StatusUnreachable {
		t.Errorf("Expected backend status %q, got %v", admin.StatusUnreachable, backend["status"])
	}
}

func TestServer_Status_NoDeps(t *testing.T) {
	server := NewServer(Deps{}, DefaultServerConfig())

	_, response := get(t, server, http.MethodGet, "/status")

	if response["mirror"] != "none" {
		t.Errorf("Expected mirror none, got %v", response["mirror"])
	}
	if _, ok := response["backend"]; ok {
		t.Error("Expected no backend section without a checker")
	}
	if _, ok := response["breaker"]; ok {
		t.Error("Expected no breaker section without a breaker")
	}
}

func TestServer_Metrics(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `bank_admin_api_requests_total{operation="list",outcome="ok"} 1`) {
		t.Errorf("Expected request counter in output, got:\n%s", body)
	}
}

func TestServer_MetricsJSON(t *testing.T) {
	server, collector := setupTestServer(t, nil)
	collector.RecordValidationFailure(admin.FormCreate)

	w, response := get(t, server, http.MethodGet, "/metrics/json")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	failures, _ := response["validation_failures"].(map[string]interface{})
	if failures[admin.FormCreate] != float64(1) {
		t.Errorf("Expected 1 create validation failure, got %v", failures[admin.FormCreate])
	}
	circuits, _ := response["circuits"].(map[string]interface{})
	if circuits["accounts-api"] != "closed" {
		t.Errorf("Expected closed circuit in snapshot, got %v", circuits["accounts-api"])
	}
}

func TestServer_MetricsWithoutCollectors(t *testing.T) {
	server := NewServer(Deps{}, DefaultServerConfig())

	w, _ := get(t, server, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	_, response := get(t, server, http.MethodGet, "/metrics/json")
	if response["error"] == nil {
		t.Error("Expected error field without a memory collector")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	for _, path := range []string{"/health", "/status", "/metrics", "/metrics/json"} {
		w, _ := get(t, server, http.MethodPost, path)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: Expected status 405, got %d", path, w.Code)
		}
	}
}

func TestServer_StartStop(t *testing.T) {
	config := DefaultServerConfig()
	config.Address = "127.0.0.1:0"
	server := NewServer(Deps{}, config)

	// Start server
	err := server.Start()
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	// Stop server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Stop(ctx)
	if err != nil {
		t.Errorf("Failed to stop server: %v", err)
	}
}

func TestDefaultServerConfig(t *testing.T) {
	config := DefaultServerConfig()

	if config.Address != ":9090" {
		t.Errorf("Expected address :9090, got %s", config.Address)
	}
	if config.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read timeout 5s, got %v", config.ReadTimeout)
	}
	if config.WriteTimeout != 10*time.Second {
		t.Errorf("Expected write timeout 10s, got %v", config.WriteTimeout)
	}
	if config.CheckTimeout != 3*time.Second {
		t.Errorf("Expected check timeout 3s, got %v", config.CheckTimeout)
	}
}

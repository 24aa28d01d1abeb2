package prometheus

import (
	"testing"
	"time"

	"bank-admin/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollector_Register(t *testing.T) {
	pc := NewPrometheusCollector("bank_admin")
	registry := prometheus.NewRegistry()

	if err := pc.Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Second registration must fail: collectors are already present
	if err := pc.Register(registry); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

func TestPrometheusCollector_Records(t *testing.T) {
	pc := NewPrometheusCollector("bank_admin")

	pc.RecordRequest("list", "ok", 20*time.Millisecond)
	pc.RecordRequest("list", "ok", 30*time.Millisecond)
	pc.RecordRequest("create", "validation", time.Millisecond)

	if got := testutil.ToFloat64(pc.requests.WithLabelValues("list", "ok")); got != 2 {
		t.Errorf("Expected 2 list/ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(pc.requests.WithLabelValues("create", "validation")); got != 1 {
		t.Errorf("Expected 1 create/validation request, got %v", got)
	}

	pc.RecordCircuitState("accounts-api", metrics.CircuitOpen)
	if got := testutil.ToFloat64(pc.circuitState.WithLabelValues("accounts-api")); got != float64(metrics.CircuitOpen) {
		t.Errorf("Expected circuit state %v, got %v", float64(metrics.CircuitOpen), got)
	}
	if got := testutil.ToFloat64(pc.circuitOpens.WithLabelValues("accounts-api")); got != 1 {
		t.Errorf("Expected 1 circuit open, got %v", got)
	}

	pc.RecordCacheLookup("account", true)
	pc.RecordCacheLookup("account", false)
	pc.RecordCacheLookup("account", false)
	if got := testutil.ToFloat64(pc.cacheMisses.WithLabelValues("account")); got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}

	pc.RecordQueueDepth(3)
	if got := testutil.ToFloat64(pc.queueDepth); got != 3 {
		t.Errorf("Expected queue depth 3, got %v", got)
	}

	pc.RecordWarmDropped()
	if got := testutil.ToFloat64(pc.warmDropped); got != 1 {
		t.Errorf("Expected 1 dropped write, got %v", got)
	}

	pc.RecordWarmWrite(false, time.Millisecond)
	if got := testutil.ToFloat64(pc.warmWrites.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed warm write, got %v", got)
	}

	pc.RecordValidationFailure("update")
	if got := testutil.ToFloat64(pc.validationFailures.WithLabelValues("update")); got != 1 {
		t.Errorf("Expected 1 validation failure, got %v", got)
	}
}

package memory

import (
	"testing"
	"time"

	"bank-admin/pkg/metrics"
)

func TestMemoryCollector_RecordRequest(t *testing.T) {
	mc := NewMemoryCollector()

	mc.RecordRequest("list", "ok", 10*time.Millisecond)
	mc.RecordRequest("list", "unreachable", 5*time.Millisecond)
	mc.RecordRequest("list", "ok", 7*time.Millisecond)

	om := mc.GetOperationMetrics("list")
	if om == nil {
		t.Fatal("Expected metrics for list")
	}
	if om.Requests != 3 {
		t.Errorf("Expected 3 requests, got %d", om.Requests)
	}
	if om.Outcomes["ok"] != 2 {
		t.Errorf("Expected 2 ok outcomes, got %d", om.Outcomes["ok"])
	}
	if len(om.Latencies) != 3 {
		t.Errorf("Expected 3 latencies, got %d", len(om.Latencies))
	}

	if mc.GetOperationMetrics("delete") != nil {
		t.Error("Expected nil metrics for unused operation")
	}
}

func TestMemoryCollector_CircuitOpensCountTransitions(t *testing.T) {
	mc := NewMemoryCollector()

	mc.RecordCircuitState("accounts-api", metrics.CircuitOpen)
	mc.RecordCircuitState("accounts-api", metrics.CircuitOpen)
	mc.RecordCircuitState("accounts-api", metrics.CircuitHalfOpen)
	mc.RecordCircuitState("accounts-api", metrics.CircuitOpen)

	s := mc.Snapshot()
	if s.CircuitOpens["accounts-api"] != 2 {
		t.Errorf("Expected 2 opens, got %d", s.CircuitOpens["accounts-api"])
	}
	if s.Circuits["accounts-api"] != "open" {
		t.Errorf("Expected state open, got %s", s.Circuits["accounts-api"])
	}
	if mc.CircuitState("accounts-api") != metrics.CircuitOpen {
		t.Errorf("Expected CircuitOpen, got %v", mc.CircuitState("accounts-api"))
	}
}

func TestMemoryCollector_SnapshotAndReset(t *testing.T) {
	mc := NewMemoryCollector()

	mc.RecordCacheLookup("list", true)
	mc.RecordCacheLookup("list", false)
	mc.RecordCacheInvalidation("create")
	mc.RecordQueueDepth(4)
	mc.RecordWarmDropped()
	mc.RecordWarmWrite(true, time.Millisecond)
	mc.RecordWarmWrite(false, time.Millisecond)
	mc.RecordValidationFailure("create")

	s := mc.Snapshot()
	if s.CacheHits["list"] != 1 || s.CacheMisses["list"] != 1 {
		t.Errorf("Unexpected cache counts: hits=%v misses=%v", s.CacheHits, s.CacheMisses)
	}
	if s.CacheInvalidations["create"] != 1 {
		t.Errorf("Expected 1 invalidation, got %d", s.CacheInvalidations["create"])
	}
	if s.QueueDepth != 4 {
		t.Errorf("Expected queue depth 4, got %d", s.QueueDepth)
	}
	if s.WarmDropped != 1 || s.WarmWrites != 2 || s.WarmErrors != 1 {
		t.Errorf("Unexpected warm counts: %+v", s)
	}
	if s.ValidationFailures["create"] != 1 {
		t.Errorf("Expected 1 validation failure, got %d", s.ValidationFailures["create"])
	}

	// Snapshot must be a copy
	s.CacheHits["list"] = 100
	if mc.Snapshot().CacheHits["list"] != 1 {
		t.Error("Snapshot shares state with collector")
	}

	mc.Reset()
	s = mc.Snapshot()
	if len(s.CacheHits) != 0 || s.QueueDepth != 0 || s.WarmWrites != 0 {
		t.Errorf("Expected empty snapshot after reset, got %+v", s)
	}
}

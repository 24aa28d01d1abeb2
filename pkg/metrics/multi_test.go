package metrics_test

import (
	"testing"
	"time"

	"bank-admin/pkg/metrics"
	"bank-admin/pkg/metrics/memory"
)

func TestMulti_FansOut(t *testing.T) {
	a := memory.NewMemoryCollector()
	b := memory.NewMemoryCollector()
	m := metrics.Multi(a, nil, b)

	m.RecordRequest("list", "ok", time.Millisecond)
	m.RecordCircuitState("accounts-api", metrics.CircuitOpen)
	m.RecordValidationFailure("create")

	for i, c := range []*memory.MemoryCollector{a, b} {
		s := c.Snapshot()
		if s.Requests["list"] != 1 {
			t.Errorf("collector %d: Expected 1 list request, got %d", i, s.Requests["list"])
		}
		if s.Circuits["accounts-api"] != "open" {
			t.Errorf("collector %d: Expected open circuit, got %q", i, s.Circuits["accounts-api"])
		}
		if s.ValidationFailures["create"] != 1 {
			t.Errorf("collector %d: Expected 1 validation failure, got %d", i, s.ValidationFailures["create"])
		}
	}
}

func TestMulti_Degenerate(t *testing.T) {
	if _, ok := metrics.Multi().(metrics.NoOpCollector); !ok {
		t.Error("Expected NoOpCollector for no collectors")
	}

	single := memory.NewMemoryCollector()
	if metrics.Multi(nil, single) != metrics.MetricsCollector(single) {
		t.Error("Expected the single collector to be returned as is")
	}
}

package resilience

import (
	"testing"
	"time"
)

func TestDefaultResilientConfig(t *testing.T) {
	config := DefaultResilientConfig()

	if config.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", config.Timeout)
	}

	if config.CircuitBreakerConfig.MaxRequests != 1 {
		t.Errorf("Expected MaxRequests 1, got %d", config.CircuitBreakerConfig.MaxRequests)
	}

	if config.CircuitBreakerConfig.Timeout != 30*time.Second {
		t.Errorf("Expected CB timeout 30s, got %v", config.CircuitBreakerConfig.Timeout)
	}

	if config.CircuitBreakerConfig.readyToTrip(Counts{ConsecutiveFailures: 4}) {
		t.Error("Should not trip with 4 failures")
	}

	if !config.CircuitBreakerConfig.readyToTrip(Counts{ConsecutiveFailures: 5}) {
		t.Error("Should trip with 5 failures")
	}
}

func TestCircuitBreakerConfig_CustomReadyToTrip(t *testing.T) {
	cfg := CircuitBreakerConfig{
		FailureThreshold: 100,
		ReadyToTrip: func(counts Counts) bool {
			return counts.TotalFailures >= 2
		},
	}

	if !cfg.readyToTrip(Counts{TotalFailures: 2}) {
		t.Error("Expected custom ReadyToTrip to take precedence")
	}
}

func TestCircuitBreakerConfig_ZeroThresholdUsesFive(t *testing.T) {
	cfg := CircuitBreakerConfig{}

	if cfg.readyToTrip(Counts{ConsecutiveFailures: 4}) {
		t.Error("Should not trip with 4 failures")
	}
	if !cfg.readyToTrip(Counts{ConsecutiveFailures: 5}) {
		t.Error("Should trip with 5 failures")
	}
}

func TestResilientConfig_WithTimeout(t *testing.T) {
	config := DefaultResilientConfig()
	newConfig := config.WithTimeout(2 * time.Second)

	if newConfig.Timeout != 2*time.Second {
		t.Errorf("Expected timeout 2s, got %v", newConfig.Timeout)
	}

	// Verify original is unchanged
	if config.Timeout != 5*time.Second {
		t.Errorf("Original config changed: got %v", config.Timeout)
	}
}

func TestResilientConfig_WithCircuitBreakerTimeout(t *testing.T) {
	config := DefaultResilientConfig()
	newConfig := config.WithCircuitBreakerTimeout(20 * time.Second)

	if newConfig.CircuitBreakerConfig.Timeout != 20*time.Second {
		t.Errorf("Expected CB timeout 20s, got %v", newConfig.CircuitBreakerConfig.Timeout)
	}

	// Verify original is unchanged
	if config.CircuitBreakerConfig.Timeout != 30*time.Second {
		t.Errorf("Original config changed: got %v", config.CircuitBreakerConfig.Timeout)
	}
}

func TestResilientConfig_WithFailureThreshold(t *testing.T) {
	config := DefaultResilientConfig().WithFailureThreshold(2)

	if !config.CircuitBreakerConfig.readyToTrip(Counts{ConsecutiveFailures: 2}) {
		t.Error("Should trip with 2 failures")
	}
}

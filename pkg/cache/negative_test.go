package cache

import (
	"testing"
	"time"
)

func TestNegativeCache_AddHas(t *testing.T) {
	nc := NewNegativeCache(time.Minute)
	defer nc.Close()

	if nc.Has("accounts:id:1") {
		t.Error("Expected empty negative cache")
	}

	nc.Add("accounts:id:1")
	if !nc.Has("accounts:id:1") {
		t.Error("Expected key to be remembered")
	}

	nc.Remove("accounts:id:1")
	if nc.Has("accounts:id:1") {
		t.Error("Expected key to be forgotten")
	}
}

func TestNegativeCache_Expiry(t *testing.T) {
	nc := NewNegativeCache(time.Minute)
	defer nc.Close()

	now := time.Now()
	nc.now = func() time.Time { return now }
	nc.Add("k")

	nc.now = func() time.Time { return now.Add(2 * time.Minute) }
	if nc.Has("k") {
		t.Error("Expected entry to expire")
	}

	nc.removeExpired()
	if nc.Stats().Count != 0 {
		t.Errorf("Expected 0 entries after cleanup, got %d", nc.Stats().Count)
	}
}

func TestNegativeCache_Clear(t *testing.T) {
	nc := NewNegativeCache(0)
	defer nc.Close()

	if nc.Stats().TTL != 10*time.Second {
		t.Errorf("Expected default TTL 10s, got %v", nc.Stats().TTL)
	}

	nc.Add("a")
	nc.Add("b")
	nc.Clear()
	if nc.Stats().Count != 0 {
		t.Errorf("Expected 0 entries, got %d", nc.Stats().Count)
	}
}

func TestNegativeCache_CloseTwice(t *testing.T) {
	nc := NewNegativeCache(time.Second)
	nc.Close()
	nc.Close()
}

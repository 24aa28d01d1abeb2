package cache

import (
	"context"
	"errors"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrKeyNotFound", ErrKeyNotFound, true},
		{"wrapped ErrKeyNotFound", WrapError(ErrKeyNotFound, "memory", "get"), true},
		{"other error", ErrInvalidKey, false},
		{"nil error", nil, false},
		{"custom error", errors.New("custom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			if result != tt.expected {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestIsUnavailable(t *testing.T) {
	if !IsUnavailable(WrapError(ErrUnavailable, "redis", "get")) {
		t.Error("Expected wrapped ErrUnavailable to be unavailable")
	}
	if IsUnavailable(errors.New("connection refused")) {
		t.Error("Expected plain error not to be unavailable")
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "memory", "set") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	err := WrapError(ErrKeyNotFound, "redis", "get")
	if err.Error() != "cache store redis get: cache: key not found" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("WrapError should preserve original error for errors.Is()")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrKeyNotFound, "key_not_found"},
		{ErrInvalidKey, "invalid_key"},
		{WrapError(ErrUnavailable, "redis", "set"), "unavailable"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

package cache

import (
	"context"
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the store
	ErrKeyNotFound = errors.New("cache: key not found")

	// ErrInvalidKey is returned when a key is empty, too long or contains control characters
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrInvalidTTL is returned by TTLPolicy.Validate for inconsistent durations
	ErrInvalidTTL = errors.New("cache: invalid ttl")

	// ErrUnavailable is returned when a store cannot serve requests
	ErrUnavailable = errors.New("cache: store unavailable")
)

// IsNotFound checks if the given error indicates that a key was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsUnavailable checks if the given error indicates the store is unavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// ClassifyError returns a string classification of the error type for logs.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}

// WrapError wraps an error with the store and operation it came from.
func WrapError(err error, store string, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("cache store %s %s: %w", store, operation, err)
}

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common accounts API errors. Typed errors returned by the client match
// these with errors.Is.
var (
	// ErrNotFound is matched by a 404 response
	ErrNotFound = errors.New("accounts: not found")

	// ErrValidation is matched by a 400 response
	ErrValidation = errors.New("accounts: validation failed")

	// ErrServer is matched by any 5xx response
	ErrServer = errors.New("accounts: server error")

	// ErrUnreachable is returned when no HTTP response was received at all
	ErrUnreachable = errors.New("accounts: backend unreachable")

	// ErrDecode is returned when a success response body cannot be decoded
	ErrDecode = errors.New("accounts: cannot decode response")

	// ErrTimeout is returned when a call exceeded its deadline
	ErrTimeout = errors.New("accounts: operation timeout")

	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	ErrCircuitOpen = errors.New("accounts: circuit breaker open")
)

// APIError is a response from the accounts API outside the expected
// success status of an operation.
type APIError struct {
	// Op is the client operation (list, get, create, ...)
	Op string
	// URL is the request URL
	URL string
	// StatusCode is the HTTP status code
	StatusCode int
	// Status is the HTTP status line, e.g. "404 Not Found"
	Status string
	// Message is the "message" property of the error body, if any
	Message string
	// FieldErrors is the "errors" property of a validation error body
	FieldErrors map[string]string
	// Decoded reports whether the body was valid JSON
	Decoded bool
	// RequestID is the X-Request-ID sent with the request
	RequestID string
}

// Error implements error.
func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.StatusLine()
	}
	return fmt.Sprintf("accounts api %s: %s", e.Op, detail)
}

// StatusLine returns "<code> <text>", e.g. "500 Internal Server Error".
func (e *APIError) StatusLine() string {
	if e.Status != "" {
		return e.Status
	}
	return strings.TrimSpace(fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)))
}

// StatusText returns the reason phrase of the status, e.g. "Not Found".
func (e *APIError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	_, text, _ := strings.Cut(e.Status, " ")
	return text
}

// Is maps status codes onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("accounts api %s: cannot reach %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrUnreachable for every transport error.
func (e *TransportError) Is(target error) bool {
	return target == ErrUnreachable
}

// IsNotFound checks if the error is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnreachable checks if the backend could not be reached.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if the call exceeded its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCircuitOpen checks if the circuit breaker rejected the call.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// AsAPIError extracts the APIError from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsBackendFailure reports whether err says something about backend
// health: no response, a timeout, or a 5xx. 4xx responses are the
// backend working as intended.
func IsBackendFailure(err error) bool {
	if err == nil {
		return false
	}
	return IsUnreachable(err) || IsTimeout(err) || errors.Is(err, ErrServer)
}

// ClassifyError returns a string classification of the error for metrics.
func ClassifyError(err error) string {
	if err == nil {
		return "ok"
	}

	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrServer):
		return "server_error"
	case errors.Is(err, ErrDecode):
		return "decode"
	}

	if _, ok := AsAPIError(err); ok {
		return "client_error"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "other"
}

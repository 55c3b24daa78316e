package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel faults shared across services. Handlers translate these into
// HTTP statuses; services never let a raw transport error escape untyped.
var (
	// ErrAuthenticationRequired is returned when a protected operation is
	// attempted without a live session.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNotFound signals that the remote system of record does not know
	// the targeted entity.
	ErrNotFound = errors.New("not found")

	// ErrNoChange marks a manual adjustment that matches the current value.
	// Callers treat it as a benign no-op, not a failure.
	ErrNoChange = errors.New("no change requested")
)

// ValidationError reports input rejected before any network call, keyed by
// the offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation fault.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// RemoteError carries a non-2xx response from the backend, including the
// server-provided message verbatim so the UI can surface it.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

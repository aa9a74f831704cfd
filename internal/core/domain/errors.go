package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunking indicates chunk size/overlap parameters that
	// cannot produce a finite chunk sequence.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrNoBackendConfigured indicates no model provider credentials are
	// present. Fatal: surfaced before any query is processed.
	ErrNoBackendConfigured = errors.New("no model backend configured")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRetrievalUnavailable indicates the retrieval index is not
	// reachable. Recovered by returning empty results where the
	// contract allows it.
	ErrRetrievalUnavailable = errors.New("retrieval index unavailable")
)

// BackendErrorKind classifies a model backend failure by cause so the
// caller can choose an appropriate user-facing message.
type BackendErrorKind string

// Backend failure classifications.
const (
	// BackendErrAuth is an authentication or authorisation failure.
	BackendErrAuth BackendErrorKind = "auth"

	// BackendErrCredits indicates insufficient account credits or quota.
	BackendErrCredits BackendErrorKind = "credits"

	// BackendErrRateLimited indicates the provider rate limit was hit.
	BackendErrRateLimited BackendErrorKind = "rate_limited"

	// BackendErrTimeout indicates the request timed out.
	BackendErrTimeout BackendErrorKind = "timeout"

	// BackendErrMalformed indicates an undecodable provider response.
	BackendErrMalformed BackendErrorKind = "malformed"

	// BackendErrTransient indicates a provider-side server error.
	BackendErrTransient BackendErrorKind = "transient"
)

// BackendError is a classified model backend failure. It is not retried
// inside the orchestration loop; it propagates to the caller. Message
// must never contain credentials or raw provider payloads.
type BackendError struct {
	// Provider is the backend that failed (e.g. "anthropic").
	Provider string

	// Kind is the failure classification.
	Kind BackendErrorKind

	// Message is a sanitised human-readable description.
	Message string

	// StatusCode is the HTTP status, when one was received.
	StatusCode int
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s backend %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s backend %s: %s", e.Provider, e.Kind, e.Message)
}

// ClassifyBackendStatus maps an HTTP status code to a failure kind.
func ClassifyBackendStatus(status int) BackendErrorKind {
	switch {
	case status == 401 || status == 403:
		return BackendErrAuth
	case status == 402:
		return BackendErrCredits
	case status == 429:
		return BackendErrRateLimited
	case status == 408 || status == 504:
		return BackendErrTimeout
	case status >= 500:
		return BackendErrTransient
	default:
		return BackendErrMalformed
	}
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrServiceUnavailable indicates the backend answered with a server error.
	ErrServiceUnavailable = errors.New("service unavailable")

	// Authentication Errors.

	// ErrAuthRequired indicates no user is signed in.
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnauthorized indicates the backend rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Document Errors.

	// ErrPollTimeout indicates a document did not reach a terminal status
	// within the polling budget.
	ErrPollTimeout = errors.New("document processing timed out")

	// Chat Errors.

	// ErrStoreEmpty indicates a chat was requested against a store with no documents.
	ErrStoreEmpty = errors.New("store has no documents")

	// ErrStaleSession indicates the chat session references a store that
	// no longer exists or is no longer accessible.
	ErrStaleSession = errors.New("chat session is no longer valid")

	// ErrNoActiveSession indicates a message was sent with no chat in progress.
	ErrNoActiveSession = errors.New("no active chat session")
)

// APIError is a non-2xx response from the backend.
// Detail carries the backend's human-readable message when one was supplied.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap maps the status code onto a domain sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrServiceUnavailable
	default:
		return nil
	}
}

// ErrorMessage extracts the text a user should see for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// IsInterrupted reports whether err came from a cancelled or timed-out
// context rather than from the backend.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

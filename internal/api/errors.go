// Package api provides the HTTP client for the motor-tracking backend REST
// API: typed endpoint wrappers, response envelope normalization, error
// classification, and the retryable mutation pipeline used by all write
// operations.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API failure classes.
// Use errors.Is(err, api.ErrNotFound) to check; the concrete error is
// always an *APIError carrying status code and request id.
var (
	ErrBadRequest   = errors.New("api: bad request")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrConflict     = errors.New("api: conflict")
	ErrTooManyReqs  = errors.New("api: too many requests")
	ErrServerError  = errors.New("api: server error")

	// ErrNotLoggedIn is returned when no stored token exists.
	ErrNotLoggedIn = errors.New("api: not logged in (run 'motortrack-go login' first)")

	// ErrTokenExpired is returned when the stored token has passed its
	// expiry and a new login is required.
	ErrTokenExpired = errors.New("api: token expired (run 'motortrack-go login' again)")
)

// APIError is a structured error from the backend carrying HTTP context.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request-id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Unwrap returns the sentinel error for this status class, enabling
// errors.Is checks against the sentinels above.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
func classifyStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrTooManyReqs
	default:
		if status >= 500 {
			return ErrServerError
		}

		return fmt.Errorf("api: unexpected status %d", status)
	}
}

// IsAuthError reports whether err is an authentication or authorization
// failure. Read paths suppress these and fall back to cached data; write
// paths surface them to the user.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotLoggedIn) ||
		errors.Is(err, ErrTokenExpired)
}

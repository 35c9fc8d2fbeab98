package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork matches any transport failure (DNS, refused, timeout).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized matches a 401/403 response. The session has already
	// been cleared when a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkError is returned when a request never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// AuthError is returned for 401 and 403 responses.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unauthorized (%d)", e.Status)
	}
	return fmt.Sprintf("unauthorized (%d): %s", e.Status, e.Message)
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

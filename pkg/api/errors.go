package api

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired reports that an authenticated request was denied
	// and the session has been wiped as a consequence. The caller must not
	// retry with the same token.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated reports a request attempted with no token
	// present. No network traffic happens in that case.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// IsSessionError reports whether err means the caller has no usable
// session, either because none was established or because the server
// revoked it.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotAuthenticated)
}

// AuthError carries the server's verbatim rejection of a login attempt.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "authentication failed"
}

// ValidationError carries the server's detail text for a rejected customer
// create or update, meant to be shown inline near the form.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "validation failed"
}

// RequestError is any other non-success response: the status code plus the
// server's detail text when one was provided.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Package errs defines the error taxonomy shared by the request pipeline,
// the token refresher and the resource services.
package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

var (
	// ErrNotAuthenticated indicates that no token is available and the user must log in
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionInvalid indicates that the refresh token was rejected and the session was cleared
	ErrSessionInvalid = errors.New("session invalid")

	// ErrTransientNetwork indicates a timeout or connectivity failure that may be retried later
	ErrTransientNetwork = errors.New("transient network error")

	// ErrStorage indicates that a local commit failed
	ErrStorage = errors.New("storage error")
)

// APIError is a non-2xx answer from the resource API that is not an auth failure.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
}

// OAuthError is an error answer from the OAuth2 token endpoint.
type OAuthError struct {
	Code        string
	Description string
	StatusCode  int
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth error %d: %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("oauth error %d: %s", e.StatusCode, e.Code)
}

// Transient wraps err so that errors.Is(err, ErrTransientNetwork) holds.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransientNetwork) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientNetwork, err)
}

// Storage wraps err so that errors.Is(err, ErrStorage) holds.
func Storage(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// IsNetwork reports whether err came from the transport rather than from
// an HTTP answer: connection failures, DNS errors, timeouts.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransientNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsAuth reports whether the caller has to log in again.
func IsAuth(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionInvalid)
}

package loft

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorInformation is the error payload returned by the Loft APIs.
type ErrorInformation struct {
	// Error is a machine processable error type.
	Error string `json:"error"`
	// Message is a human readable error message.
	Message string `json:"message,omitempty"`
}

func (e *ErrorInformation) String() string {
	if e.Error == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Error, e.Message)
}

// APIError represents a non-success HTTP response from the platform. Info
// is nil when the response carried no parseable error payload.
type APIError struct {
	Status int
	Info   *ErrorInformation
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Info != nil {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Info)
	}

	return fmt.Sprintf("HTTP %d", e.Status)
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrNoTokenProvider      = errors.New("no token provider configured")
	ErrMissingResponseBody  = errors.New("missing response payload")
	ErrSkipTLSOnlyInDev     = errors.New("skipTLS is only allowed in development environments")
	ErrNoSSOURL             = errors.New("no SSO URL found in endpoint response")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrCacheMiss            = errors.New("key not found in cache")
	ErrCacheEntryExpired    = errors.New("cache entry expired")
	ErrUnknownRole          = errors.New("unknown role")
	ErrStreamClosed         = errors.New("event stream closed")
	ErrNoWebsocketEndpoint  = errors.New("no websocket integration endpoint configured")
)

// IsNotFound checks whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks whether err is an API error with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks whether err is an API error with status 403.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}

	return false
}

package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoProvider is returned when generation is requested but no
// provider is configured.
var ErrNoProvider = errors.New("no AI provider configured")

// APIError is a non-2xx response from a provider endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a provider response indicating bad
// or missing credentials.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusForbidden
}

package marketdata

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError describes a failed backend call.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.StatusCode == 0 {
		if msg == "" {
			msg = "request failed"
		}
		return fmt.Sprintf("network error: %s", msg)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsNetwork returns true if the request never produced an HTTP response.
func (e *APIError) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsNotFound returns true if the error is a 404 Not Found.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnavailable returns true if the backend reported 503, which it does
// for upstream provider and validation failures.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// AsAPIError unwraps err into an *APIError if possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

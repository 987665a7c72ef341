package gateway

import (
	"errors"
	"fmt"
)

// HTTPError reports a non-2xx response from the API. The status code is
// preserved so consumers can branch on it.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// NetworkError reports that no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network request failed: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a 2xx response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "malformed response body: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

package nflverse

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError is returned when a table cannot be retrieved.
type ProviderError struct {
	Dataset    string
	Season     int
	StatusCode int
	URL        string
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected response"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("nflverse %s %d: %s (status=%d)", e.Dataset, e.Season, msg, e.StatusCode)
	}
	return fmt.Sprintf("nflverse %s %d: %s", e.Dataset, e.Season, msg)
}

// NotFound reports whether the provider has no file for the season.
func (e *ProviderError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// retryable is false for client errors; the file will not appear by asking again.
func (e *ProviderError) retryable() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// AsProviderError attempts to unwrap an error into a ProviderError.
func AsProviderError(err error) (*ProviderError, bool) {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

package discord

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the REST API.
type APIError struct {
	StatusCode int
	Code       int     // platform error code from the JSON body, if any
	Message    string
	RetryAfter float64 // seconds, only for 429
}

func (e *APIError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("discord API error %d: %s (retry_after=%.2fs)", e.StatusCode, e.Message, e.RetryAfter)
	}
	if e.Code != 0 {
		return fmt.Sprintf("discord API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("discord API error %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

// IsRateLimited reports a 429. Requests are never retried automatically.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

func GetRetryAfter(err error) float64 {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

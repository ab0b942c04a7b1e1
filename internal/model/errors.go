package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError carries the status code of a failed page fetch so retry logic can inspect it.
type HTTPError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	prefix := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.URL != "" {
		prefix = fmt.Sprintf("%s from %s", prefix, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the status is worth retrying: 429 and any 5xx.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so retry decorators give up on it immediately.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, was marked Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

package provider

import (
	"errors"
	"fmt"
)

// Sentinel kinds for provider errors.
var (
	ErrRetriesExhausted = errors.New("provider retries exhausted")
	ErrCallAborted      = errors.New("provider call aborted")
	ErrDecode           = errors.New("provider payload decode failed")
)

// StatusError carries a non-2xx provider response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: provider returned %d: %s", e.Path, e.StatusCode, e.Body)
}

func newStatusError(path string, resp *Response) *StatusError {
	body := resp.Body
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
}

// IsRateLimited reports whether err is an HTTP 429 from the provider.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 429
}

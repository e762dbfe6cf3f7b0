package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// NetworkError is a transport-level failure: connection refused, DNS,
// timeout, or a body that could not be read.
type NetworkError struct {
	URL     string
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	if isConnectionRefused(e.Err) {
		return fmt.Sprintf("API server not running at %s", e.BaseURL)
	}
	return fmt.Sprintf("sending request to %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FailureKind categorizes the error as "timeout" or "network".
func (e *NetworkError) FailureKind() string {
	if e.Timeout() {
		return "timeout"
	}
	return "network"
}

// Timeout reports whether the failure was a deadline or I/O timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// HTTPError is a response with a status of 400 or above.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// FailureKind categorizes the error as "http".
func (e *HTTPError) FailureKind() string { return "http" }

func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "connection refused")
}

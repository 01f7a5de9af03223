// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrCircuitOpen is returned without a network attempt while the
	// breaker is open or its half-open trial slot is taken.
	ErrCircuitOpen = errors.New("catalog provider circuit is open")

	// ErrNotFound maps a provider 404.
	ErrNotFound = errors.New("not found at catalog provider")
)

// ClientError is a provider 4xx caused by the request itself.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog provider rejected request: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("catalog provider rejected request: %d %s", e.Status, e.Message)
}

// UpstreamTransientError is a failure worth retrying: timeouts, network
// errors, 5xx and 429.
type UpstreamTransientError struct {
	Status     int           // zero for network errors
	Timeout    bool          // the attempt hit its deadline
	RetryAfter time.Duration // provider-requested delay, if any
	Err        error
}

func (e *UpstreamTransientError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("catalog provider timed out: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("catalog provider returned %d %s", e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("catalog provider unreachable: %v", e.Err)
	}
}

func (e *UpstreamTransientError) Unwrap() error { return e.Err }

// UpstreamError is what Client.Fetch returns once retries are exhausted,
// the circuit is open, or the failure was not retryable.
type UpstreamError struct {
	Path  string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err should be retried.
func IsRetryable(err error) bool {
	var transient *UpstreamTransientError
	return errors.As(err, &transient)
}

// IsTimeout reports whether err came from an attempt deadline.
func IsTimeout(err error) bool {
	var transient *UpstreamTransientError
	return errors.As(err, &transient) && transient.Timeout
}

// countsAsSuccess tells the breaker which outcomes say nothing about
// provider health.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var clientErr *ClientError
	return errors.Is(err, ErrNotFound) || errors.As(err, &clientErr)
}

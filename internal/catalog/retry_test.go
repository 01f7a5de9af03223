// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetryPolicy_Do(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error // returned by successive attempts; nil means success
		wantCalls int
		wantErr   bool
	}{
		{"first attempt succeeds", []error{nil}, 1, false},
		{"succeeds on third", []error{errTransient, errTransient, nil}, 3, false},
		{"always transient", []error{errTransient, errTransient, errTransient, nil}, 3, true},
		{"client error not retried", []error{&ClientError{Status: 400}}, 1, true},
		{"not found not retried", []error{ErrNotFound}, 1, true},
		{"circuit open not retried", []error{ErrCircuitOpen}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := fastRetry().Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
				e := tt.errs[calls]
				calls++
				if e != nil {
					return nil, e
				}
				return json.RawMessage(`{}`), nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_ReturnsLastError(t *testing.T) {
	last := &UpstreamTransientError{Status: 502, Err: errors.New("status 502")}
	errs := []error{errTransient, errTransient, last}
	calls := 0

	_, err := fastRetry().Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		e := errs[calls]
		calls++
		return nil, e
	})

	if !errors.Is(err, last) {
		t.Errorf("Do() error = %v, want last attempt's error", err)
	}
}

func TestRetryPolicy_PermanentErrorUnwrapped(t *testing.T) {
	_, err := fastRetry().Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		return nil, &ClientError{Status: 422, Message: "bad filter"}
	})

	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Status != 422 {
		t.Errorf("Do() error = %v, want *ClientError{422}", err)
	}
}

func TestRetryPolicy_HonorsRetryAfter(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	start := time.Now()

	_, _ = policy.Do(context.Background(), func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return nil, &UpstreamTransientError{Status: 429, RetryAfter: 100 * time.Millisecond, Err: errors.New("status 429")}
		}
		return json.RawMessage(`{}`), nil
	})

	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 100ms from Retry-After", elapsed)
	}
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := policy.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return nil, errTransient
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err == nil {
		t.Error("Do() error = nil, want error after cancel")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"garbage", 0},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

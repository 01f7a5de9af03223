// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/metrics"
)

var errTransient = &UpstreamTransientError{Status: 503, Err: errors.New("status 503")}

func failing() (json.RawMessage, error)    { return nil, errTransient }
func succeeding() (json.RawMessage, error) { return json.RawMessage(`{}`), nil }

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := NewBreaker(BreakerSettings{Name: "test-threshold", Threshold: 3, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		_, _ = b.Execute(failing)
	}
	if b.State() != "closed" {
		t.Fatalf("State() = %s after 2 failures, want closed", b.State())
	}
	if b.ConsecutiveFailures() != 2 {
		t.Errorf("ConsecutiveFailures() = %d, want 2", b.ConsecutiveFailures())
	}

	_, _ = b.Execute(failing)
	if b.State() != "open" {
		t.Fatalf("State() = %s after 3 failures, want open", b.State())
	}
	if b.OpenedAt().IsZero() {
		t.Error("OpenedAt() is zero after opening")
	}

	var calls int32
	_, err := b.Execute(func() (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return succeeding()
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times while open, want 0", calls)
	}
	if b.RetryAfter() <= 0 {
		t.Errorf("RetryAfter() = %v, want > 0 while open", b.RetryAfter())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-threshold")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerSettings{Name: "test-reset", Threshold: 3, Cooldown: time.Minute})

	_, _ = b.Execute(failing)
	_, _ = b.Execute(failing)
	if _, err := b.Execute(succeeding); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	_, _ = b.Execute(failing)
	_, _ = b.Execute(failing)

	if b.State() != "closed" {
		t.Errorf("State() = %s, want closed: success must reset the streak", b.State())
	}
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	b := NewBreaker(BreakerSettings{Name: "test-client-errors", Threshold: 2, Cooldown: time.Minute})

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (json.RawMessage, error) {
			return nil, &ClientError{Status: 401, Message: "Invalid API key"}
		})
		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("Execute() error = %v, want *ClientError", err)
		}
		_, _ = b.Execute(func() (json.RawMessage, error) { return nil, ErrNotFound })
	}

	if b.State() != "closed" {
		t.Errorf("State() = %s, want closed", b.State())
	}
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	cooldown := 50 * time.Millisecond

	t.Run("success closes", func(t *testing.T) {
		b := NewBreaker(BreakerSettings{Name: "test-trial-ok", Threshold: 1, Cooldown: cooldown})
		_, _ = b.Execute(failing)
		if b.State() != "open" {
			t.Fatalf("State() = %s, want open", b.State())
		}

		time.Sleep(cooldown + 20*time.Millisecond)
		if b.State() != "half-open" {
			t.Fatalf("State() = %s after cooldown, want half-open", b.State())
		}

		if _, err := b.Execute(succeeding); err != nil {
			t.Fatalf("trial Execute() error = %v", err)
		}
		if b.State() != "closed" {
			t.Errorf("State() = %s after successful trial, want closed", b.State())
		}
		if b.ConsecutiveFailures() != 0 {
			t.Errorf("ConsecutiveFailures() = %d, want 0", b.ConsecutiveFailures())
		}
	})

	t.Run("failure reopens", func(t *testing.T) {
		b := NewBreaker(BreakerSettings{Name: "test-trial-fail", Threshold: 1, Cooldown: cooldown})
		_, _ = b.Execute(failing)
		time.Sleep(cooldown + 20*time.Millisecond)

		_, _ = b.Execute(failing)
		if b.State() != "open" {
			t.Errorf("State() = %s after failed trial, want open", b.State())
		}
	})

	t.Run("single trial slot", func(t *testing.T) {
		b := NewBreaker(BreakerSettings{Name: "test-trial-slot", Threshold: 1, Cooldown: cooldown})
		_, _ = b.Execute(failing)
		time.Sleep(cooldown + 20*time.Millisecond)

		release := make(chan struct{})
		started := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Execute(func() (json.RawMessage, error) {
				close(started)
				<-release
				return succeeding()
			})
		}()
		<-started

		var calls int32
		_, err := b.Execute(func() (json.RawMessage, error) {
			atomic.AddInt32(&calls, 1)
			return succeeding()
		})
		close(release)
		wg.Wait()

		if !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("concurrent trial error = %v, want ErrCircuitOpen", err)
		}
		if calls != 0 {
			t.Errorf("second trial fn called %d times, want 0", calls)
		}
		if b.State() != "closed" {
			t.Errorf("State() = %s after trial succeeded, want closed", b.State())
		}
	})
}

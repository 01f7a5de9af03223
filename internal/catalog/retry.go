// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// RetryPolicy retries transient upstream failures with capped exponential
// backoff and jitter. Delays grow as BaseDelay * 2^(attempt-1).
type RetryPolicy struct {
	MaxAttempts int           // total invocations, including the first
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap on any single delay
	Jitter      float64       // randomization factor in [0,1)
}

// DefaultRetryPolicy returns 3 attempts starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
	}
}

// Do invokes fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	hint := &retryAfterBackOff{BackOff: p.exponential()}
	bo := backoff.WithContext(backoff.WithMaxRetries(hint, uint64(attempts-1)), ctx)

	attempt := 0
	op := func() (json.RawMessage, error) {
		attempt++
		payload, err := fn(ctx)
		if err == nil {
			return payload, nil
		}
		if !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		hint.observe(err)
		return nil, err
	}

	notify := func(err error, delay time.Duration) {
		metrics.UpstreamRetries.Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("Retrying catalog provider request")
	}

	return backoff.RetryNotifyWithData(op, bo, notify)
}

func (p RetryPolicy) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.MaxElapsedTime = 0 // attempts bound the loop
	b.Reset()
	return b
}

// retryAfterBackOff stretches the next delay to honor a provider
// Retry-After header on 429 responses.
type retryAfterBackOff struct {
	backoff.BackOff
	wait time.Duration
}

func (b *retryAfterBackOff) observe(err error) {
	var transient *UpstreamTransientError
	if errors.As(err, &transient) {
		b.wait = transient.RetryAfter
	} else {
		b.wait = 0
	}
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.wait > next {
		next = b.wait
	}
	b.wait = 0
	return next
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/metrics"
)

// ResponseCache is the TTL-agnostic read-through cache used by the catalog
// layer. Callers choose the TTL per write.
type ResponseCache struct {
	store     Store
	now       func() time.Time
	retention time.Duration
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithClock overrides time.Now. Tests use it to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// WithStaleRetention sets how long an expired entry stays available to
// Stale before it may be reaped.
func WithStaleRetention(d time.Duration) Option {
	return func(c *ResponseCache) {
		c.retention = d
	}
}

// NewResponseCache wraps store.
func NewResponseCache(store Store, opts ...Option) *ResponseCache {
	c := &ResponseCache{
		store:     store,
		now:       time.Now,
		retention: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload under key only while it is fresh.
func (c *ResponseCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	e, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	// Physical reaping may lag, so freshness is always checked here.
	if !e.FreshAt(c.now()) {
		return nil, false, nil
	}
	return e.Payload, true, nil
}

// Set stores payload under key with expiresAt = now + ttl.
func (c *ResponseCache) Set(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: ttl must be positive, got %v", key, ttl)
	}

	now := c.now()
	e := &Entry{
		Key:       key,
		Payload:   payload,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := c.store.Upsert(ctx, e, e.ExpiresAt.Add(c.retention)); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Stale returns whatever payload is stored under key, fresh or not.
func (c *ResponseCache) Stale(ctx context.Context, key string) (json.RawMessage, bool, error) {
	e, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues("stale").Inc()
		return nil, false, fmt.Errorf("cache stale lookup: %w", err)
	}
	return e.Payload, true, nil
}

// InvalidateExpired removes entries that expired more than the stale
// retention ago.
func (c *ResponseCache) InvalidateExpired(ctx context.Context) (int, error) {
	removed, err := c.store.DeleteExpired(ctx, c.now().Add(-c.retention))
	if err != nil {
		metrics.CacheErrors.WithLabelValues("sweep").Inc()
		return 0, fmt.Errorf("invalidate expired: %w", err)
	}
	metrics.CacheEvictions.WithLabelValues("response").Add(float64(removed))
	return removed, nil
}

// Ping reports backing store health.
func (c *ResponseCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// CacheStatus reports where a payload came from.
type CacheStatus string

const (
	CacheHit   CacheStatus = "HIT"
	CacheMiss  CacheStatus = "MISS"
	CacheStale CacheStatus = "STALE"
)

// Result is a payload plus its provenance.
type Result struct {
	Payload json.RawMessage
	Status  CacheStatus
	TTL     time.Duration
}

// Fetcher is the upstream side of compute-or-fetch. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
}

// ComputeFunc produces a fresh payload on a cache miss.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// ComputeOption adjusts a single Compute call.
type ComputeOption func(*computeOptions)

type computeOptions struct {
	cacheable func(json.RawMessage) bool
	cacheType string
}

// WithCacheable restricts which payloads are written back or served stale.
func WithCacheable(fn func(json.RawMessage) bool) ComputeOption {
	return func(o *computeOptions) {
		o.cacheable = fn
	}
}

// WithCacheType labels cache metrics for this call.
func WithCacheType(name string) ComputeOption {
	return func(o *computeOptions) {
		o.cacheType = name
	}
}

// Service is the compute-or-fetch entry point used by every handler.
type Service struct {
	cache    *cache.ResponseCache
	upstream Fetcher
	logger   zerolog.Logger
}

// NewService wires the response cache to an upstream fetcher.
func NewService(rc *cache.ResponseCache, upstream Fetcher) *Service {
	return &Service{
		cache:    rc,
		upstream: upstream,
		logger:   logging.WithComponent("catalog"),
	}
}

// Get serves GET path?params from cache or upstream. A zero ttl uses
// TTLFor(path).
func (s *Service) Get(ctx context.Context, path string, params url.Values, ttl time.Duration) (*Result, error) {
	if ttl <= 0 {
		ttl = TTLFor(path)
	}
	return s.Compute(ctx, CacheKey(FamilyCatalog, path, params), ttl, func(ctx context.Context) (json.RawMessage, error) {
		return s.upstream.Fetch(ctx, path, params)
	})
}

// Compute returns the fresh payload under key, or runs compute and stores
// its result for ttl. When compute fails and an expired payload is still
// stored, that payload is returned with CacheStale. Backing store read
// failures are returned as errors. Write-back failures are logged only.
func (s *Service) Compute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc, opts ...ComputeOption) (*Result, error) {
	o := computeOptions{cacheType: "catalog"}
	for _, opt := range opts {
		opt(&o)
	}

	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		metrics.RecordCacheLookup(o.cacheType, string(CacheHit))
		return &Result{Payload: payload, Status: CacheHit, TTL: ttl}, nil
	}

	payload, fetchErr := compute(ctx)
	if fetchErr == nil {
		if o.cacheable == nil || o.cacheable(payload) {
			if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Failed to write response cache")
			}
		}
		metrics.RecordCacheLookup(o.cacheType, string(CacheMiss))
		return &Result{Payload: payload, Status: CacheMiss, TTL: ttl}, nil
	}

	stale, ok, err := s.cache.Stale(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Stale lookup failed")
		return nil, fetchErr
	}
	if ok && (o.cacheable == nil || o.cacheable(stale)) {
		logging.Ctx(ctx).Warn().
			Err(fetchErr).
			Str("key", key).
			Msg("Serving stale response after upstream failure")
		metrics.RecordCacheLookup(o.cacheType, string(CacheStale))
		return &Result{Payload: stale, Status: CacheStale, TTL: ttl}, nil
	}

	return nil, fetchErr
}

// Ping reports cache health.
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

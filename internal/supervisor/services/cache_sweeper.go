// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredInvalidator removes cache entries past their stale retention.
// *cache.ResponseCache implements it.
type ExpiredInvalidator interface {
	InvalidateExpired(ctx context.Context) (int, error)
}

// ValueLogCollector reclaims space after deletions. *cache.BadgerStore
// implements it.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// CacheSweeperConfig holds sweep scheduling.
type CacheSweeperConfig struct {
	Interval       time.Duration // default 10m
	GCDiscardRatio float64       // default 0.5
	SweepTimeout   time.Duration // default 1m
}

// CacheSweeper periodically purges dead cache entries. Sweep failures are
// logged and retried on the next tick; they never stop the service.
type CacheSweeper struct {
	cache  ExpiredInvalidator
	gc     ValueLogCollector
	config CacheSweeperConfig
	logger zerolog.Logger
	name   string
}

// NewCacheSweeper creates a sweeper. gc may be nil for stores without a
// value log.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweeper(cache ExpiredInvalidator, gc ValueLogCollector, cfg CacheSweeperConfig, logger zerolog.Logger) *CacheSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = time.Minute
	}
	return &CacheSweeper{
		cache:  cache,
		gc:     gc,
		config: cfg,
		logger: logger.With().Str("service", "cache-sweeper").Logger(),
		name:   "cache-sweeper",
	}
}

// Serve implements suture.Service.
func (s *CacheSweeper) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("cache sweeper starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache sweeper shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one purge and, if anything was removed, a value log GC pass.
func (s *CacheSweeper) Sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	removed, err := s.cache.InvalidateExpired(sweepCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache sweep failed")
		return
	}

	if removed > 0 && s.gc != nil {
		if err := s.gc.RunValueLogGC(s.config.GCDiscardRatio); err != nil {
			s.logger.Warn().Err(err).Msg("value log GC failed")
		}
	}

	s.logger.Debug().
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("cache sweep complete")
}

// String returns the service name for logging.
func (s *CacheSweeper) String() string {
	return s.name
}

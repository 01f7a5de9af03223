// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateResilience(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if strings.TrimSpace(c.TMDB.BearerToken) == "" {
		return fmt.Errorf("TMDB_BEARER_TOKEN is required")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive, got %v", c.TMDB.Timeout)
	}
	if c.TMDB.RateLimit < 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must not be negative, got %v", c.TMDB.RateLimit)
	}
	if c.TMDB.RateLimit > 0 && c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateResilience() error {
	r := c.Resilience
	if r.BreakerThreshold < 1 {
		return fmt.Errorf("BREAKER_THRESHOLD must be at least 1")
	}
	if r.BreakerCooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive, got %v", r.BreakerCooldown)
	}
	if r.RetryAttempts < 1 || r.RetryAttempts > 10 {
		return fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10, got %d", r.RetryAttempts)
	}
	if r.RetryBaseDelay <= 0 {
		return fmt.Errorf("RETRY_BASE_DELAY must be positive, got %v", r.RetryBaseDelay)
	}
	if r.RetryMaxDelay < r.RetryBaseDelay {
		return fmt.Errorf("RETRY_MAX_DELAY (%v) must not be less than RETRY_BASE_DELAY (%v)", r.RetryMaxDelay, r.RetryBaseDelay)
	}
	if r.RetryJitter < 0 || r.RetryJitter >= 1 {
		return fmt.Errorf("RETRY_JITTER must be in [0, 1), got %v", r.RetryJitter)
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.InMemory && c.Cache.Path == "" {
		return fmt.Errorf("CACHE_PATH is required unless CACHE_IN_MEMORY is set")
	}
	if c.Cache.StaleRetention < 0 {
		return fmt.Errorf("CACHE_STALE_RETENTION must not be negative")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive, got %v", c.Cache.SweepInterval)
	}
	if c.Cache.GCDiscardRatio <= 0 || c.Cache.GCDiscardRatio >= 1 {
		return fmt.Errorf("CACHE_GC_DISCARD_RATIO must be in (0, 1), got %v", c.Cache.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Timeout <= 0 {
		return fmt.Errorf("RECOMMEND_TIMEOUT must be positive")
	}
	if c.Recommend.DetailConcurrency < 1 {
		return fmt.Errorf("RECOMMEND_DETAIL_CONCURRENCY must be at least 1, got %d", c.Recommend.DetailConcurrency)
	}
	if c.Recommend.CacheTTL < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret != "" && len(s.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(s.JWTSecret))
	}
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if s.CatalogRateLimit < 1 || s.SearchRateLimit < 1 {
		return fmt.Errorf("CATALOG_RATE_LIMIT and SEARCH_RATE_LIMIT must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee's configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	Resilience ResilienceConfig `koanf:"resilience"`
	Cache      CacheConfig      `koanf:"cache"`
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TMDBConfig describes the upstream catalog provider.
type TMDBConfig struct {
	BaseURL     string        `koanf:"base_url"`     // e.g. https://api.themoviedb.org/3
	BearerToken string        `koanf:"bearer_token"` // v4 read access token
	Timeout     time.Duration `koanf:"timeout"`      // per-attempt timeout
	RateLimit   float64       `koanf:"rate_limit"`   // requests per second, 0 disables
	Burst       int           `koanf:"burst"`
}

// ResilienceConfig tunes the circuit breaker and retry policy.
type ResilienceConfig struct {
	BreakerThreshold uint32        `koanf:"breaker_threshold"` // consecutive failures before opening
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`  // time spent OPEN before a trial call
	RetryAttempts    int           `koanf:"retry_attempts"`    // total attempts including the first
	RetryBaseDelay   time.Duration `koanf:"retry_base_delay"`
	RetryMaxDelay    time.Duration `koanf:"retry_max_delay"`
	RetryJitter      float64       `koanf:"retry_jitter"` // 0..1 randomization factor
}

// CacheConfig configures the persistent response cache.
type CacheConfig struct {
	Path           string        `koanf:"path"`
	InMemory       bool          `koanf:"in_memory"`       // use a process-local store instead of Badger
	StaleRetention time.Duration `koanf:"stale_retention"` // how long expired entries stay readable for stale-serve
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// DatabaseConfig configures the DuckDB profile store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
}

// RecommendConfig tunes the recommendation aggregator.
type RecommendConfig struct {
	Timeout           time.Duration `koanf:"timeout"`
	DetailConcurrency int           `koanf:"detail_concurrency"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds token verification, CORS and rate limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CatalogRateLimit  int           `koanf:"catalog_rate_limit"` // requests per window per IP
	SearchRateLimit   int           `koanf:"search_rate_limit"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

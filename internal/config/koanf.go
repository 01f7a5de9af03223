// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    45 * time.Second, // recommendations may fan out to several upstream calls
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		TMDB: TMDBConfig{
			BaseURL:     "https://api.themoviedb.org/3",
			BearerToken: "",
			Timeout:     10 * time.Second,
			RateLimit:   40,
			Burst:       20,
		},
		Resilience: ResilienceConfig{
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			RetryAttempts:    3,
			RetryBaseDelay:   500 * time.Millisecond,
			RetryMaxDelay:    5 * time.Second,
			RetryJitter:      0.2,
		},
		Cache: CacheConfig{
			Path:           "/data/cache",
			InMemory:       false,
			StaleRetention: 7 * 24 * time.Hour,
			SweepInterval:  15 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Database: DatabaseConfig{
			Path:      "/data/marquee.duckdb",
			MaxMemory: "512MB",
		},
		Recommend: RecommendConfig{
			Timeout:           30 * time.Second,
			DetailConcurrency: 5,
			CacheTTL:          time.Hour,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: false,
			RateLimitWindow:   15 * time.Minute,
			CatalogRateLimit:  100,
			SearchRateLimit:   50,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TMDB_BEARER_TOKEN -> tmdb.bearer_token, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog provider
	"tmdb_base_url":     "tmdb.base_url",
	"tmdb_bearer_token": "tmdb.bearer_token",
	"tmdb_api_key":      "tmdb.bearer_token",
	"tmdb_timeout":      "tmdb.timeout",
	"tmdb_rate_limit":   "tmdb.rate_limit",
	"tmdb_burst":        "tmdb.burst",

	// Resilience
	"breaker_threshold": "resilience.breaker_threshold",
	"breaker_cooldown":  "resilience.breaker_cooldown",
	"retry_attempts":    "resilience.retry_attempts",
	"retry_base_delay":  "resilience.retry_base_delay",
	"retry_max_delay":   "resilience.retry_max_delay",
	"retry_jitter":      "resilience.retry_jitter",

	// Response cache
	"cache_path":             "cache.path",
	"cache_in_memory":        "cache.in_memory",
	"cache_stale_retention":  "cache.stale_retention",
	"cache_sweep_interval":   "cache.sweep_interval",
	"cache_gc_discard_ratio": "cache.gc_discard_ratio",

	// Profile database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",

	// Recommendations
	"recommend_timeout":            "recommend.timeout",
	"recommend_detail_concurrency": "recommend.detail_concurrency",
	"recommend_cache_ttl":          "recommend.cache_ttl",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_secret":      "security.jwt_secret",
	"cors_origins":        "security.cors_origins",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_window":   "security.rate_limit_window",
	"catalog_rate_limit":  "security.catalog_rate_limit",
	"search_rate_limit":   "security.search_rate_limit",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Returns "" for unknown variables so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

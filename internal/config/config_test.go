// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.TMDB.BearerToken = "test-token"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with token", func(*Config) {}, ""},
		{"missing token", func(c *Config) { c.TMDB.BearerToken = " " }, "TMDB_BEARER_TOKEN"},
		{"bad scheme", func(c *Config) { c.TMDB.BaseURL = "ftp://api.example.com" }, "scheme"},
		{"query in base url", func(c *Config) { c.TMDB.BaseURL = "https://api.example.com/3?x=1" }, "query"},
		{"path prefix allowed", func(c *Config) { c.TMDB.BaseURL = "http://localhost:8080/3" }, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"zero threshold", func(c *Config) { c.Resilience.BreakerThreshold = 0 }, "BREAKER_THRESHOLD"},
		{"zero cooldown", func(c *Config) { c.Resilience.BreakerCooldown = 0 }, "BREAKER_COOLDOWN"},
		{"too many attempts", func(c *Config) { c.Resilience.RetryAttempts = 11 }, "RETRY_ATTEMPTS"},
		{"max below base", func(c *Config) { c.Resilience.RetryMaxDelay = time.Millisecond }, "RETRY_MAX_DELAY"},
		{"jitter out of range", func(c *Config) { c.Resilience.RetryJitter = 1 }, "RETRY_JITTER"},
		{"no cache path", func(c *Config) { c.Cache.Path = "" }, "CACHE_PATH"},
		{"in-memory cache without path", func(c *Config) { c.Cache.Path = ""; c.Cache.InMemory = true }, ""},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate limit disabled skips limits", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.SearchRateLimit = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

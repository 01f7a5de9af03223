// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

// app holds the wired components and the resources to release on exit.
type app struct {
	handler  http.Handler
	cache    *cache.ResponseCache
	valueLog services.ValueLogCollector // nil for the in-memory store
	closers  []io.Closer
}

func newApp(cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := openCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store)
	if bs, ok := store.(*cache.BadgerStore); ok {
		a.valueLog = bs
	}
	a.cache = cache.NewResponseCache(store, cache.WithStaleRetention(cfg.Cache.StaleRetention))

	client, err := catalog.NewClient(catalog.ClientConfig{
		BaseURL:     cfg.TMDB.BaseURL,
		BearerToken: cfg.TMDB.BearerToken,
		Timeout:     cfg.TMDB.Timeout,
		RateLimit:   cfg.TMDB.RateLimit,
		Burst:       cfg.TMDB.Burst,
		Retry: catalog.RetryPolicy{
			MaxAttempts: cfg.Resilience.RetryAttempts,
			BaseDelay:   cfg.Resilience.RetryBaseDelay,
			MaxDelay:    cfg.Resilience.RetryMaxDelay,
			Jitter:      cfg.Resilience.RetryJitter,
		},
		Breaker: catalog.BreakerSettings{
			Threshold: cfg.Resilience.BreakerThreshold,
			Cooldown:  cfg.Resilience.BreakerCooldown,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	svc := catalog.NewService(a.cache, client)

	profiles, err := profile.OpenStore(profile.StoreConfig{
		Path:      cfg.Database.Path,
		MaxMemory: cfg.Database.MaxMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}
	a.closers = append(a.closers, profiles)

	engineCfg := recommend.DefaultConfig()
	if cfg.Recommend.DetailConcurrency > 0 {
		engineCfg.DetailConcurrency = cfg.Recommend.DetailConcurrency
	}
	engine := recommend.NewEngine(svc, profiles, engineCfg)

	verifier, err := auth.NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}

	handler := api.NewHandler(api.HandlerConfig{
		Catalog:     svc,
		Recommender: engine,
		Breaker:     client.Breaker(),
		Checks: map[string]api.Pinger{
			"cache":    a.cache,
			"profiles": profiles,
		},
		RecommendTimeout: cfg.Recommend.Timeout,
		RecommendTTL:     cfg.Recommend.CacheTTL,
	})

	router := api.NewRouter(handler, verifier, api.RouterConfig{
		Middleware: &api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		},
		CatalogLimit: api.RateLimitConfig{
			Name:     "catalog",
			Requests: cfg.Security.CatalogRateLimit,
			Window:   cfg.Security.RateLimitWindow,
		},
		SearchLimit: api.RateLimitConfig{
			Name:     "search",
			Requests: cfg.Security.SearchRateLimit,
			Window:   cfg.Security.RateLimitWindow,
		},
	})
	a.handler = router.Setup()

	return a, nil
}

func openCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	if cfg.InMemory {
		logging.Warn().Msg("Using in-memory response cache; entries are lost on restart")
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.OpenBadger(cache.BadgerOptions{Path: cfg.Path})
	if err != nil {
		return nil, fmt.Errorf("response cache: %w", err)
	}
	return store, nil
}

// Close releases stores in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}
	a.closers = nil
}

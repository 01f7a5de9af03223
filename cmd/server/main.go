// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for the Marquee server.
//
// Marquee fronts a movie and TV metadata provider (TMDB v3) with a
// persistent response cache, a circuit breaker and retrying client, and a
// per-user recommendation aggregator.
//
// # Startup order
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. Response cache (Badger, or in-memory when CACHE_IN_MEMORY=true)
//  4. Catalog client and cached catalog service
//  5. Profile store (DuckDB) and recommendation engine
//  6. HTTP router
//  7. Supervisor tree: cache sweeper (data layer), HTTP server (api layer)
//
// # Example
//
//	export TMDB_BEARER_TOKEN=your-read-access-token
//	export JWT_SECRET=$(openssl rand -base64 32)
//	./marquee
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for SERVER_SHUTDOWN_TIMEOUT before stores are closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("tmdb_base_url", cfg.TMDB.BaseURL).
		Str("cache_path", cfg.Cache.Path).
		Bool("cache_in_memory", cfg.Cache.InMemory).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Marquee")

	app, err := newApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer app.Close()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(services.NewCacheSweeper(app.cache, app.valueLog, services.CacheSweeperConfig{
		Interval:       cfg.Cache.SweepInterval,
		GCDiscardRatio: cfg.Cache.GCDiscardRatio,
	}, logging.WithComponent("supervisor")))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Marquee stopped")
}

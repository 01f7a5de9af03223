// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/middleware"
)

// RouterConfig holds per-route-group settings.
type RouterConfig struct {
	Middleware   *ChiMiddlewareConfig
	CatalogLimit RateLimitConfig
	SearchLimit  RateLimitConfig
}

// Router binds handlers to routes.
type Router struct {
	handler  *Handler
	verifier *auth.Verifier
	mw       *ChiMiddleware
	cfg      RouterConfig
}

// NewRouter creates a router. verifier guards /recommendations.
func NewRouter(handler *Handler, verifier *auth.Verifier, cfg RouterConfig) *Router {
	if cfg.CatalogLimit.Name == "" {
		cfg.CatalogLimit.Name = "catalog"
	}
	if cfg.SearchLimit.Name == "" {
		cfg.SearchLimit.Name = "search"
	}
	return &Router{
		handler:  handler,
		verifier: verifier,
		mw:       NewChiMiddleware(cfg.Middleware),
		cfg:      cfg,
	}
}

// Setup builds the chi route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.mw.CORS())
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Use(chimiddleware.NoCache)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit(router.cfg.CatalogLimit))

			r.Get("/movies/regional", h.RegionalPopular)
			r.Get("/movies/regional/trending", h.RegionalTrending)
			r.Get("/movies/*", h.Passthrough)

			r.Get("/discover/genres/{mediaType}", h.Genres)
			r.Get("/discover/{mediaType}", h.Discover)

			r.With(auth.RequireUser(router.verifier, writeAuthError)).
				Get("/recommendations", h.Recommendations)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit(router.cfg.SearchLimit))

			r.Get("/search", h.Search)
			r.Get("/search/{kind}", h.Search)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

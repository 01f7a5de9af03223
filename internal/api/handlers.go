// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/recommend"
)

const (
	defaultRecommendTimeout  = 15 * time.Second
	defaultRecommendCacheTTL = time.Hour
)

// Recommender builds a user's recommendation list. *recommend.Engine
// implements it.
type Recommender interface {
	Recommend(ctx context.Context, userID string) (*recommend.Result, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves every route.
type Handler struct {
	catalog          *catalog.Service
	recommender      Recommender
	breaker          BreakerStatus
	checks           map[string]Pinger
	recommendTimeout time.Duration
	recommendTTL     time.Duration
	startTime        time.Time
}

// HandlerConfig carries the handler's collaborators.
type HandlerConfig struct {
	Catalog     *catalog.Service
	Recommender Recommender
	Breaker     BreakerStatus

	// Checks are pinged by /health/ready, keyed by component name.
	Checks map[string]Pinger

	RecommendTimeout time.Duration
	RecommendTTL     time.Duration
}

// NewHandler creates a handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		catalog:          cfg.Catalog,
		recommender:      cfg.Recommender,
		breaker:          cfg.Breaker,
		checks:           cfg.Checks,
		recommendTimeout: cfg.RecommendTimeout,
		recommendTTL:     cfg.RecommendTTL,
		startTime:        time.Now(),
	}
	if h.recommendTimeout <= 0 {
		h.recommendTimeout = defaultRecommendTimeout
	}
	if h.recommendTTL <= 0 {
		h.recommendTTL = defaultRecommendCacheTTL
	}
	return h
}

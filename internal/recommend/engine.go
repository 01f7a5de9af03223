// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/profile"
)

// Catalog is the cached catalog access the engine reads through.
// *catalog.Service implements it.
type Catalog interface {
	Get(ctx context.Context, path string, params url.Values, ttl time.Duration) (*catalog.Result, error)
}

// Engine aggregates strategy output into one list. It is safe for
// concurrent use.
type Engine struct {
	catalog  Catalog
	profiles profile.Provider
	cfg      Config
	logger   zerolog.Logger
}

// NewEngine creates an engine. Invalid limits fall back to DefaultConfig.
func NewEngine(c Catalog, profiles profile.Provider, cfg Config) *Engine {
	logger := logging.WithComponent("recommend")
	if err := cfg.Validate(); err != nil {
		logger.Warn().Err(err).Msg("Invalid recommendation config, using defaults")
		cfg = DefaultConfig()
	}
	return &Engine{
		catalog:  c,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

// section is a run of candidates merged under one per-section limit.
type section struct {
	strategy   Strategy
	limit      int
	candidates []Candidate
}

// Recommend returns up to MaxResults items for userID.
func (e *Engine) Recommend(ctx context.Context, userID string) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	prof, err := e.profiles.Profile(ctx, userID)
	if errors.Is(err, profile.ErrUserNotFound) {
		return &Result{Recommendations: []json.RawMessage{}, Reason: ReasonUserNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// Strategies never return errors, so none can cancel the others.
	var (
		g                                  errgroup.Group
		favGenre, favSimilar, historyGenre []section
	)
	g.Go(func() error {
		favGenre = e.genreStrategy(ctx, StrategyFavoritesGenre, prof.Favorites, e.cfg.FavoriteLookups, url.Values{
			"sort_by": {"popularity.desc"},
			"page":    {"1"},
		})
		return nil
	})
	g.Go(func() error {
		favSimilar = e.similarStrategy(ctx, prof.Favorites)
		return nil
	})
	g.Go(func() error {
		historyGenre = e.genreStrategy(ctx, StrategyWatchHistoryGenre, prof.WatchHistory, e.cfg.HistoryLookups, url.Values{
			"sort_by":        {"vote_average.desc"},
			"vote_count.gte": {"100"},
			"page":           {"1"},
		})
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := newMerger(e.cfg.MaxResults)
	for _, sections := range [][]section{favGenre, favSimilar, historyGenre} {
		for _, s := range sections {
			m.add(s)
		}
	}
	personalized := m.count()

	if m.count() < e.cfg.TrendingThreshold {
		for _, s := range e.trendingStrategy(ctx) {
			m.add(s)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	res := &Result{Recommendations: m.items()}
	switch {
	case personalized > 0:
		res.Reason = ReasonPreferences
	case len(res.Recommendations) > 0:
		res.Reason = ReasonPopular
	default:
		res.Reason = ReasonNone
	}

	for strategy, n := range m.bySource {
		metrics.RecommendItems.WithLabelValues(string(strategy)).Add(float64(n))
	}
	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Int("items", len(res.Recommendations)).
		Int("personalized", personalized).
		Dur("duration", time.Since(start)).
		Msg("Recommendations built")

	return res, nil
}

// lookupFailed records a skipped upstream call.
func (e *Engine) lookupFailed(ctx context.Context, strategy Strategy, path string, err error) {
	metrics.RecommendLookupFailures.WithLabelValues(string(strategy)).Inc()
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("strategy", string(strategy)).
		Str("path", path).
		Msg("Recommendation lookup failed, skipping")
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Strategy names a candidate source.
type Strategy string

const (
	StrategyFavoritesGenre    Strategy = "favorites_genre"
	StrategyFavoritesSimilar  Strategy = "favorites_similar"
	StrategyWatchHistoryGenre Strategy = "watch_history_genre"
	StrategyTrending          Strategy = "trending"
)

// Reasons reported with a result.
const (
	ReasonPreferences  = "Based on your preferences"
	ReasonPopular      = "Popular movies"
	ReasonNone         = "No recommendations available"
	ReasonUserNotFound = "User not found"
)

// Candidate is one catalog item proposed by a strategy.
type Candidate struct {
	ItemID    int64
	MediaType string
	Source    Strategy
	Item      json.RawMessage
}

// Result is the recommendation response body.
type Result struct {
	Recommendations []json.RawMessage `json:"recommendations"`
	Reason          string            `json:"reason"`
}

// Config bounds each strategy.
type Config struct {
	FavoriteLookups   int // favorites whose details feed the genre strategy
	HistoryLookups    int // watch history entries whose details feed the genre strategy
	TopGenres         int
	GenreItems        int // new items taken from a genre discover call
	SimilarLookups    int
	SimilarItems      int // new items taken per similar call
	TrendingThreshold int // trending runs when fewer items were collected
	MaxResults        int
	DetailConcurrency int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		FavoriteLookups:   5,
		HistoryLookups:    5,
		TopGenres:         3,
		GenreItems:        10,
		SimilarLookups:    3,
		SimilarItems:      5,
		TrendingThreshold: 10,
		MaxResults:        20,
		DetailConcurrency: 5,
	}
}

// Validate checks the limits.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"favorite_lookups", c.FavoriteLookups},
		{"history_lookups", c.HistoryLookups},
		{"top_genres", c.TopGenres},
		{"genre_items", c.GenreItems},
		{"similar_lookups", c.SimilarLookups},
		{"similar_items", c.SimilarItems},
		{"max_results", c.MaxResults},
		{"detail_concurrency", c.DetailConcurrency},
	}
	for _, ch := range checks {
		if ch.value < 1 {
			return fmt.Errorf("recommend: %s must be at least 1, got %d", ch.name, ch.value)
		}
	}
	if c.TrendingThreshold < 0 || c.TrendingThreshold > c.MaxResults {
		return fmt.Errorf("recommend: trending_threshold must be within [0, %d], got %d", c.MaxResults, c.TrendingThreshold)
	}
	return nil
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/profile"
)

// genreStrategy derives the dominant genres of refs and runs one discover
// call over them.
func (e *Engine) genreStrategy(ctx context.Context, strategy Strategy, refs []profile.MediaRef, lookups int, params url.Values) []section {
	if len(refs) == 0 {
		return nil
	}
	genres := e.topGenres(ctx, strategy, refs[:min(lookups, len(refs))])
	if len(genres) == 0 {
		return nil
	}

	ids := make([]string, len(genres))
	for i, g := range genres {
		ids[i] = strconv.Itoa(g)
	}
	query := url.Values{"with_genres": {strings.Join(ids, ",")}}
	for k, v := range params {
		query[k] = v
	}

	candidates, err := e.listing(ctx, strategy, "/discover/movie", query, profile.MediaMovie)
	if err != nil {
		return nil
	}
	return []section{{strategy: strategy, limit: e.cfg.GenreItems, candidates: candidates}}
}

// topGenres fetches details for refs concurrently and returns the most
// frequent genre IDs. Ties keep first-appearance order across refs.
func (e *Engine) topGenres(ctx context.Context, strategy Strategy, refs []profile.MediaRef) []int {
	details := make([][]catalog.Genre, len(refs))

	var g errgroup.Group
	g.SetLimit(e.cfg.DetailConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			path := fmt.Sprintf("/%s/%d", ref.MediaType, ref.ItemID)
			res, err := e.catalog.Get(ctx, path, nil, 0)
			if err != nil {
				e.lookupFailed(ctx, strategy, path, err)
				return nil
			}
			item, err := catalog.DecodeItem(res.Payload)
			if err != nil {
				e.lookupFailed(ctx, strategy, path, err)
				return nil
			}
			details[i] = item.Genres
			return nil
		})
	}
	_ = g.Wait()

	counts := make(map[int]int)
	var order []int
	for _, genres := range details {
		for _, genre := range genres {
			if _, ok := counts[genre.ID]; !ok {
				order = append(order, genre.ID)
			}
			counts[genre.ID]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	return order[:min(e.cfg.TopGenres, len(order))]
}

// similarStrategy yields one section per favorite so each contributes its
// own quota.
func (e *Engine) similarStrategy(ctx context.Context, favorites []profile.MediaRef) []section {
	refs := favorites[:min(e.cfg.SimilarLookups, len(favorites))]
	sections := make([]section, len(refs))

	var g errgroup.Group
	g.SetLimit(e.cfg.DetailConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			path := fmt.Sprintf("/%s/%d/similar", ref.MediaType, ref.ItemID)
			candidates, err := e.listing(ctx, StrategyFavoritesSimilar, path, nil, ref.MediaType)
			if err != nil {
				return nil
			}
			sections[i] = section{strategy: StrategyFavoritesSimilar, limit: e.cfg.SimilarItems, candidates: candidates}
			return nil
		})
	}
	_ = g.Wait()
	return sections
}

func (e *Engine) trendingStrategy(ctx context.Context) []section {
	candidates, err := e.listing(ctx, StrategyTrending, "/trending/movie/day", nil, profile.MediaMovie)
	if err != nil {
		return nil
	}
	return []section{{strategy: StrategyTrending, limit: e.cfg.MaxResults, candidates: candidates}}
}

// listing fetches a paginated listing and converts its entries.
func (e *Engine) listing(ctx context.Context, strategy Strategy, path string, params url.Values, mediaType string) ([]Candidate, error) {
	res, err := e.catalog.Get(ctx, path, params, 0)
	if err != nil {
		e.lookupFailed(ctx, strategy, path, err)
		return nil, err
	}
	page, err := catalog.DecodePage(res.Payload)
	if err != nil {
		e.lookupFailed(ctx, strategy, path, err)
		return nil, err
	}

	candidates := make([]Candidate, 0, len(page.Results))
	for _, raw := range page.Results {
		var head struct {
			ID        int64  `json:"id"`
			MediaType string `json:"media_type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == 0 {
			continue
		}
		mt := head.MediaType
		if mt == "" {
			mt = mediaType
		}
		candidates = append(candidates, Candidate{ItemID: head.ID, MediaType: mt, Source: strategy, Item: raw})
	}
	return candidates, nil
}

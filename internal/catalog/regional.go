// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
)

const (
	regionalPageSize        = 20
	regionalTrendingPages   = 5
	regionalTrendingTTL     = time.Hour
	regionalPopularTTL      = TTLRegional
	regionalTrendingMinVote = "5"
)

// Region selects a regional listing: an ISO 639-1 original language plus
// an ISO 3166-1 country, e.g. hi/IN.
type Region struct {
	Language string
	Country  string
}

func (r Region) locale() string {
	return r.Language + "-" + r.Country
}

func (r Region) key(kind string, page int) string {
	return CacheKey(FamilyRegional, "/"+kind, url.Values{
		"language": {r.Language},
		"region":   {r.Country},
		"page":     {strconv.Itoa(page)},
	})
}

// RegionalPopular lists popular titles originally in r.Language. When the
// discover call returns no entries it falls back to filtering the global
// popular list. Empty listings are returned but never cached.
func (s *Service) RegionalPopular(ctx context.Context, r Region, page int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	return s.Compute(ctx, r.key("popular", page), regionalPopularTTL, func(ctx context.Context) (json.RawMessage, error) {
		payload, err := s.upstream.Fetch(ctx, "/discover/movie", url.Values{
			"with_original_language": {r.Language},
			"language":               {r.locale()},
			"sort_by":                {"popularity.desc"},
			"page":                   {strconv.Itoa(page)},
		})
		if err != nil {
			return nil, err
		}
		if HasResults(payload) {
			return payload, nil
		}

		filtered, ok := s.popularFallback(ctx, r, page)
		if ok {
			return filtered.Encode()
		}
		return EmptyPage(page).Encode()
	}, WithCacheable(HasResults))
}

func (s *Service) popularFallback(ctx context.Context, r Region, page int) (Page, bool) {
	payload, err := s.upstream.Fetch(ctx, "/movie/popular", url.Values{
		"language": {r.locale()},
		"page":     {strconv.Itoa(page)},
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("language", r.Language).Msg("Regional popular fallback failed")
		return Page{}, false
	}
	p, err := DecodePage(payload)
	if err != nil {
		return Page{}, false
	}

	matched := filterItems(p.Results, func(it Item) bool {
		return it.OriginalLanguage == r.Language
	})
	if len(matched) == 0 {
		return Page{}, false
	}
	p.Results = matched
	p.TotalResults = len(matched)
	p.TotalPages = ceilDiv(len(matched), regionalPageSize)
	return p, true
}

// RegionalTrending lists trending titles for r. Discover is tried first.
// If it fails or is empty, up to five pages of the daily trending list
// are scanned for titles in r.Language or produced in r.Country.
func (s *Service) RegionalTrending(ctx context.Context, r Region, page int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	return s.Compute(ctx, r.key("trending", page), regionalTrendingTTL, func(ctx context.Context) (json.RawMessage, error) {
		payload, err := s.upstream.Fetch(ctx, "/discover/movie", url.Values{
			"with_original_language": {r.Language},
			"language":               {r.locale()},
			"sort_by":                {"popularity.desc"},
			"vote_count.gte":         {regionalTrendingMinVote},
			"page":                   {strconv.Itoa(page)},
		})
		if err == nil && HasResults(payload) {
			return payload, nil
		}
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("language", r.Language).Msg("Regional discover failed, scanning trending")
		}

		matched, err := s.scanTrending(ctx, r)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return EmptyPage(page).Encode()
		}

		start := (page - 1) * regionalPageSize
		end := min(start+regionalPageSize, len(matched))
		results := []json.RawMessage{}
		if start < len(matched) {
			results = matched[start:end]
		}
		return Page{
			Page:         page,
			Results:      results,
			TotalPages:   ceilDiv(len(matched), regionalPageSize),
			TotalResults: len(matched),
		}.Encode()
	}, WithCacheable(HasResults))
}

func (s *Service) scanTrending(ctx context.Context, r Region) ([]json.RawMessage, error) {
	var matched []json.RawMessage
	for n := 1; n <= regionalTrendingPages && len(matched) < regionalPageSize; n++ {
		payload, err := s.upstream.Fetch(ctx, "/trending/movie/day", url.Values{"page": {strconv.Itoa(n)}})
		if err != nil {
			return nil, err
		}
		p, err := DecodePage(payload)
		if err != nil {
			return nil, err
		}
		if len(p.Results) == 0 {
			break
		}

		matched = append(matched, filterItems(p.Results, r.matches)...)

		if n >= max(p.TotalPages, 1) {
			break
		}
	}
	return matched, nil
}

func (r Region) matches(it Item) bool {
	if it.OriginalLanguage == r.Language || slices.Contains(it.OriginCountry, r.Country) {
		return true
	}
	for _, c := range it.ProductionCountries {
		if c.ISO31661 == r.Country {
			return true
		}
	}
	return false
}

func filterItems(raw []json.RawMessage, keep func(Item) bool) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(raw))
	for _, entry := range raw {
		it, err := DecodeItem(entry)
		if err != nil {
			continue
		}
		if keep(it) {
			out = append(out, entry)
		}
	}
	return out
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

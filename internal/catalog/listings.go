// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Search kinds accepted by the provider.
const (
	SearchMulti  = "multi"
	SearchMovie  = "movie"
	SearchTV     = "tv"
	SearchPerson = "person"
)

// Search runs /search/{kind}. A provider 404 becomes an empty page rather
// than an error.
func (s *Service) Search(ctx context.Context, kind, query string, page int) (*Result, error) {
	if kind == "" {
		kind = SearchMulti
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"query":         {strings.TrimSpace(query)},
		"page":          {strconv.Itoa(page)},
		"include_adult": {"false"},
	}

	res, err := s.Get(ctx, "/search/"+kind, params, TTLListing)
	if errors.Is(err, ErrNotFound) {
		payload, encErr := EmptyPage(1).Encode()
		if encErr != nil {
			return nil, encErr
		}
		return &Result{Payload: payload, Status: CacheMiss, TTL: TTLListing}, nil
	}
	return res, err
}

// Genres returns the genre list for mediaType ("movie" or "tv").
func (s *Service) Genres(ctx context.Context, mediaType string) (*Result, error) {
	return s.Get(ctx, "/genre/"+mediaType+"/list", nil, TTLGenres)
}

// discoverPassthrough names filters forwarded verbatim besides the with_,
// without_ and dotted range families.
var discoverPassthrough = map[string]bool{
	"primary_release_year":   true,
	"first_air_date_year":    true,
	"with_original_language": true,
}

// DiscoverParams builds provider discover parameters from a client query.
// Only filter keys are forwarded. sort_by, page and include_adult always
// take their defaults when absent.
func DiscoverParams(query url.Values) url.Values {
	params := url.Values{
		"sort_by":       {"popularity.desc"},
		"page":          {"1"},
		"include_adult": {"false"},
	}
	if v := query.Get("sort_by"); v != "" {
		params.Set("sort_by", v)
	}
	if v := query.Get("page"); v != "" {
		params.Set("page", v)
	}

	for key, values := range query {
		if discoverPassthrough[key] ||
			strings.HasPrefix(key, "with_") ||
			strings.HasPrefix(key, "without_") ||
			strings.Contains(key, ".") {
			params[key] = values
		}
	}
	return params
}

// Discover runs /discover/{mediaType} with whitelisted filters.
func (s *Service) Discover(ctx context.Context, mediaType string, query url.Values) (*Result, error) {
	return s.Get(ctx, "/discover/"+mediaType, DiscoverParams(query), TTLListing)
}

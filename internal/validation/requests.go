// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchRequest is the query of /search and /search/{kind}. Pages stop at
// 500, the deepest page upstream listings serve.
type SearchRequest struct {
	Kind  string `query:"kind" validate:"oneof=multi movie tv person"`
	Query string `query:"query" validate:"required,max=500"`
	Page  int    `query:"page" validate:"min=1,max=500"`
}

// DiscoverRequest is the path and paging input of /discover/{mediaType}.
// Filters are whitelisted by the catalog layer.
type DiscoverRequest struct {
	MediaType string `query:"mediaType" validate:"media_type"`
	Page      int    `query:"page" validate:"min=1,max=500"`
}

// GenresRequest is the path input of /discover/genres/{mediaType}.
type GenresRequest struct {
	MediaType string `query:"mediaType" validate:"media_type"`
}

// RegionalRequest is the query of the regional listings.
type RegionalRequest struct {
	Language string `query:"language" validate:"language_code"`
	Region   string `query:"region" validate:"iso3166_1_alpha2"`
	Page     int    `query:"page" validate:"min=1,max=500"`
}

// Defaults for regional listings when the client omits them.
const (
	DefaultRegionalLanguage = "hi"
	DefaultRegionalRegion   = "IN"
)

// ParsePage reads the page parameter, defaulting to 1 when absent.
func ParsePage(q url.Values) (int, *RequestValidationError) {
	raw := strings.TrimSpace(q.Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError("page", "numeric", raw, "page must be a whole number")
	}
	return page, nil
}

// NewSearchRequest builds a search request from the route kind and query.
func NewSearchRequest(kind string, q url.Values) (*SearchRequest, *RequestValidationError) {
	page, verr := ParsePage(q)
	if verr != nil {
		return nil, verr
	}
	req := &SearchRequest{
		Kind:  kind,
		Query: strings.TrimSpace(q.Get("query")),
		Page:  page,
	}
	if verr := ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// NewDiscoverRequest validates the media type and page of a discover call.
func NewDiscoverRequest(mediaType string, q url.Values) (*DiscoverRequest, *RequestValidationError) {
	page, verr := ParsePage(q)
	if verr != nil {
		return nil, verr
	}
	req := &DiscoverRequest{MediaType: mediaType, Page: page}
	if verr := ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

// NewRegionalRequest applies defaults, normalizes case and validates.
func NewRegionalRequest(q url.Values) (*RegionalRequest, *RequestValidationError) {
	page, verr := ParsePage(q)
	if verr != nil {
		return nil, verr
	}
	req := &RegionalRequest{
		Language: strings.ToLower(strings.TrimSpace(q.Get("language"))),
		Region:   strings.ToUpper(strings.TrimSpace(q.Get("region"))),
		Page:     page,
	}
	if req.Language == "" {
		req.Language = DefaultRegionalLanguage
	}
	if req.Region == "" {
		req.Region = DefaultRegionalRegion
	}
	if verr := ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

func fieldError(field, tag string, value interface{}, message string) *RequestValidationError {
	return &RequestValidationError{errors: []ValidationError{{
		field:   field,
		tag:     tag,
		value:   value,
		message: message,
	}}}
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Page is a paginated provider listing. Items stay raw so they are passed
// through untouched.
type Page struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// EmptyPage is the listing returned when nothing matched.
func EmptyPage(page int) Page {
	if page < 1 {
		page = 1
	}
	return Page{Page: page, Results: []json.RawMessage{}}
}

// Genre is a provider genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item holds the fields the backend reads from a listing entry or a
// detail payload. Everything else is ignored.
type Item struct {
	ID                  int64     `json:"id"`
	MediaType           string    `json:"media_type,omitempty"`
	OriginalLanguage    string    `json:"original_language,omitempty"`
	OriginCountry       []string  `json:"origin_country,omitempty"`
	ProductionCountries []Country `json:"production_countries,omitempty"`
	GenreIDs            []int     `json:"genre_ids,omitempty"`
	Genres              []Genre   `json:"genres,omitempty"`
}

// Country is a production country entry.
type Country struct {
	ISO31661 string `json:"iso_3166_1"`
}

// DecodePage parses a listing payload.
func DecodePage(payload json.RawMessage) (Page, error) {
	var p Page
	if err := json.Unmarshal(payload, &p); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	if p.Results == nil {
		p.Results = []json.RawMessage{}
	}
	return p, nil
}

// DecodeItem parses the fields of Item out of a raw entry.
func DecodeItem(raw json.RawMessage) (Item, error) {
	var it Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}
	return it, nil
}

// Encode marshals p for the response body and the cache.
func (p Page) Encode() (json.RawMessage, error) {
	if p.Results == nil {
		p.Results = []json.RawMessage{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return b, nil
}

// HasResults reports whether payload is a listing with at least one entry.
// Non-listing payloads count as having results.
func HasResults(payload json.RawMessage) bool {
	var body struct {
		Results *[]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return false
	}
	return body.Results == nil || len(*body.Results) > 0
}

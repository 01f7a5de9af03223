// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"regexp"
	"strings"
	"time"
)

// Cache lifetimes by response class.
const (
	TTLDetails  = 24 * time.Hour
	TTLGenres   = 24 * time.Hour
	TTLPopular  = time.Hour
	TTLListing  = 30 * time.Minute
	TTLDefault  = time.Hour
	TTLRegional = 2 * time.Hour
)

var (
	detailPath    = regexp.MustCompile(`^/(movie|tv)/\d+$`)
	genreListPath = regexp.MustCompile(`^/genre/[^/]+/list$`)
)

// TTLFor classifies a provider path into its cache lifetime.
func TTLFor(path string) time.Duration {
	switch {
	case strings.Contains(path, "/popular") || strings.Contains(path, "/trending"):
		return TTLPopular
	case detailPath.MatchString(path):
		return TTLDetails
	case genreListPath.MatchString(path):
		return TTLGenres
	case strings.Contains(path, "/discover/"),
		strings.Contains(path, "/search/"),
		strings.HasPrefix(path, "/movie/"),
		strings.HasPrefix(path, "/tv/"):
		return TTLListing
	default:
		return TTLDefault
	}
}

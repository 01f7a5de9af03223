// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"net/url"
	"sort"
	"strings"
)

// Response cache key families. Provider paths always begin with '/', so a
// key built from a request path can never carry another family's tag.
const (
	FamilyCatalog         = "tmdb"
	FamilyRegional        = "regional"
	FamilyRecommendations = "rec"
)

// sigEscaper escapes only the bytes that delimit pairs, so a value holding
// "&" or "=" cannot read as extra parameters.
var sigEscaper = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D", "#", "%23")

// CacheKey prefixes Signature(path, params) with a key family.
func CacheKey(family, path string, params url.Values) string {
	return family + ":" + Signature(path, params)
}

// Signature derives the dedup key for a logical request, and the body of
// its cache key: path?k1=v1&k2=v2 with keys sorted and empty values
// dropped. Only %, &, = and # are escaped in keys and values. Multiple
// values for one key keep their order.
func Signature(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	sep := byte('?')
	for _, k := range keys {
		for _, v := range params[k] {
			if v == "" {
				continue
			}
			b.WriteByte(sep)
			b.WriteString(sigEscaper.Replace(k))
			b.WriteByte('=')
			b.WriteString(sigEscaper.Replace(v))
			sep = '&'
		}
	}
	return b.String()
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api exposes the catalog service and recommendations over HTTP.

Routes are mounted on a chi router under /api/v1:

	GET /movies/regional             regional popular titles
	GET /movies/regional/trending    regional trending titles
	GET /movies/*                    cached passthrough to the provider
	GET /search, /search/{kind}      multi, movie, tv or person search
	GET /discover/genres/{mediaType} genre list
	GET /discover/{mediaType}        filtered discover listing
	GET /recommendations             personalized list, bearer token required
	GET /health/live, /health/ready  probes
	GET /metrics                     Prometheus

Catalog responses pass the provider's JSON through unchanged and carry an
X-Cache header of HIT, MISS or STALE. Failures use a common envelope:

	{"success": false, "error": {"code": "...", "message": "...", "request_id": "..."}}

Catalog and search routes are rate limited per client IP with httprate.
*/
package api

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package catalog is the resilient access layer in front of the TMDB-style
catalog provider.

# Request Path

Every catalog read goes through Service, which implements compute-or-fetch:

	key := CacheKey(FamilyCatalog, path, params)
	fresh cache entry?          -> (payload, HIT)
	Client.Fetch:
	    Deduplicator            joins an identical in-flight call, or
	    RetryPolicy             retries transient failures with backoff,
	    Breaker                 short-circuits while the provider is unhealthy,
	    rate limiter + HTTP GET one bounded network attempt
	success                     -> write back with the class TTL, (payload, MISS)
	failure + any stored entry  -> (stale payload, STALE)
	failure otherwise           -> *UpstreamError

# Error Taxonomy

  - *ClientError: provider rejected the request (4xx other than 404/429).
    Never retried and never counted against the breaker.
  - ErrNotFound: provider returned 404. Never retried. Search maps it to
    an empty result page.
  - *UpstreamTransientError: timeout, connection error, 5xx or 429.
    Retried, then counted as a breaker failure.
  - ErrCircuitOpen: the breaker rejected the call without a network attempt.
  - *UpstreamError: envelope returned by Client.Fetch; errors.Is and
    errors.As reach the cause.

# TTL Policy

TTLFor classifies a provider path: item details and genre lists 24h,
popular/trending lists 1h, discover/search and other lists 30 minutes,
everything else 1h.

# Concurrency

Service, Client, Breaker and Deduplicator are safe for concurrent use and
are meant to be constructed once per process and injected into handlers.
*/
package catalog

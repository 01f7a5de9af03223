// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides the persistent response cache that fronts every call
to the catalog provider.

# Overview

A ResponseCache stores opaque JSON payloads under a request signature with a
per-entry expiry. Freshness is decided by the reader: Get returns a payload
only while ExpiresAt is in the future, even if the backing store has not yet
reaped the entry. Stale returns the payload regardless of freshness and is
used to serve a previous response when a live refresh fails.

# Stores

Two Store implementations are provided:

  - BadgerStore: on-disk BadgerDB with snappy compression. Entries are
    written with a Badger TTL of (expiresAt + stale retention), so the
    store reaps them in the background once they are too old to serve
    even as stale data.
  - MemoryStore: a map guarded by sync.RWMutex, used by tests and when
    persistence is disabled.

# Maintenance

InvalidateExpired deletes entries whose expiry is older than the stale
retention window. It is not needed for correctness; the supervisor runs it
periodically to bound storage growth.

# Example

	store, err := cache.OpenBadger(cache.BadgerOptions{Path: "/data/cache"})
	if err != nil {
	    return err
	}
	defer store.Close()

	rc := cache.NewResponseCache(store, cache.WithStaleRetention(7*24*time.Hour))
	if payload, ok, err := rc.Get(ctx, key); err == nil && ok {
	    return payload, nil
	}
*/
package cache

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Errors
var (
	// ErrNotFound is returned by Store.Get when no entry exists for the key.
	ErrNotFound = errors.New("cache entry not found")

	// ErrStoreClosed is returned by stores after Close.
	ErrStoreClosed = errors.New("cache store is closed")
)

// Entry is one cached provider response.
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// FreshAt reports whether the entry is still valid at now.
func (e *Entry) FreshAt(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// Store is the persistent key/value boundary of the response cache.
//
// Implementations must make Upsert atomic per key (last writer wins) and
// must be safe for concurrent use.
type Store interface {
	// Get returns the entry for key regardless of freshness, or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)

	// Upsert replaces any entry under e.Key. The store may physically
	// remove the entry any time after reapAt.
	Upsert(ctx context.Context, e *Entry, reapAt time.Time) error

	// DeleteExpired removes entries whose ExpiresAt is before cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	Close() error
}

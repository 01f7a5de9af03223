// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	entry  Entry
	reapAt time.Time
}

// MemoryStore is a process-local Store.
//
// Entries past their reap time are dropped lazily on Get, mirroring the
// background expiry of the persistent store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryRecord
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryRecord)}
}

// Get returns a copy of the entry stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	rec, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}

	if !rec.reapAt.IsZero() && time.Now().After(rec.reapAt) {
		s.mu.Lock()
		// re-check: a concurrent Upsert may have refreshed it
		if cur, ok := s.entries[key]; ok && cur.reapAt.Equal(rec.reapAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	e := rec.entry
	return &e, nil
}

// Upsert stores e under e.Key, replacing any previous entry.
func (s *MemoryStore) Upsert(_ context.Context, e *Entry, reapAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.entries[e.Key] = memoryRecord{entry: *e, reapAt: reapAt}
	return nil
}

// DeleteExpired removes entries whose ExpiresAt is before cutoff.
func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	removed := 0
	for key, rec := range s.entries {
		if rec.entry.ExpiresAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, including stale ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ping fails once the store is closed.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Close drops all entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

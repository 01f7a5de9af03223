// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestMemoryStore_LazyReap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	e := &Entry{Key: "k", Payload: json.RawMessage(`1`), ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	if err := store.Upsert(ctx, e, now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound for entry past reap time", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = store.Upsert(ctx, &Entry{Key: key, Payload: json.RawMessage(`1`), ExpiresAt: now.Add(time.Hour)}, time.Time{})
			_, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("Len() = %d, want 5", store.Len())
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Ping() error = %v, want ErrStoreClosed", err)
	}
	if err := store.Upsert(ctx, &Entry{Key: "k"}, time.Time{}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Upsert() error = %v, want ErrStoreClosed", err)
	}
}

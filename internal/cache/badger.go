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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
)

// Key prefix for response entries. Keeps the keyspace open for other
// record types sharing the same database.
const responseKeyPrefix = "resp:"

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without touching disk. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write. Off by default; losing the last few
	// cache writes on crash only costs a refetch.
	SyncWrites bool

	// MemTableSize in bytes. Zero uses 16MB.
	MemTableSize int64

	// ValueLogFileSize in bytes. Zero uses 64MB.
	ValueLogFileSize int64
}

// BadgerStore is the persistent Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a Badger-backed store.
func OpenBadger(cfg BadgerOptions) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger store path is required")
	}
	if cfg.MemTableSize == 0 {
		cfg.MemTableSize = 16 << 20
	}
	if cfg.ValueLogFileSize == 0 {
		cfg.ValueLogFileSize = 64 << 20
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}

	opts := badger.DefaultOptions(path).WithInMemory(cfg.InMemory)
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.NumCompactors = 2
	opts.Compression = options.Snappy

	// Badger's logger is noisy at INFO; we log our own events.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", cfg.InMemory).
		Msg("Response cache store opened")

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Get returns the entry stored under key, ignoring freshness.
func (s *BadgerStore) Get(_ context.Context, key string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(responseKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &entry)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return &entry, nil
}

// Upsert writes e with a Badger TTL ending at reapAt. An entry already
// past reapAt is deleted instead.
func (s *BadgerStore) Upsert(_ context.Context, e *Entry, reapAt time.Time) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	key := []byte(responseKeyPrefix + e.Key)
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if !reapAt.IsZero() {
			ttl := time.Until(reapAt)
			if ttl <= 0 {
				return txn.Delete(key)
			}
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.Key, err)
	}
	return nil
}

// DeleteExpired removes entries whose ExpiresAt is before cutoff.
func (s *BadgerStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var expired [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(responseKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var entry Entry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Dropping undecodable cache entry")
				expired = append(expired, item.KeyCopy(nil))
				continue
			}
			if entry.ExpiresAt.Before(cutoff) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan expired entries: %w", err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	for _, key := range expired {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return 0, fmt.Errorf("delete expired entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush expired deletes: %w", err)
	}

	return len(expired), nil
}

// RunValueLogGC reclaims value log space until Badger reports nothing left
// to rewrite.
func (s *BadgerStore) RunValueLogGC(discardRatio float64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

// Ping fails once the store is closed.
func (s *BadgerStore) Ping(_ context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	return nil
}

// Close closes the underlying database. Safe to call more than once.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/marquee/internal/logging"
)

const schemaTimeout = 30 * time.Second

// StoreConfig configures the DuckDB profile store.
type StoreConfig struct {
	Path      string // empty or ":memory:" for an in-memory database
	MaxMemory string // DuckDB max_memory, e.g. "512MB"
}

// Store is the DuckDB-backed Provider.
type Store struct {
	conn *sql.DB
}

// OpenStore opens or creates the profile database and its schema.
func OpenStore(cfg StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		// 0750 per gosec G301
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := path + "?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false"
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize profile schema: %w", err)
	}

	logging.Info().Str("path", path).Msg("Profile store opened")
	return s, nil
}

func (s *Store) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS profile_entry_seq START 1`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS user_favorites (
			user_id TEXT NOT NULL,
			item_id BIGINT NOT NULL,
			media_type TEXT NOT NULL CHECK (media_type IN ('movie', 'tv')),
			seq BIGINT NOT NULL DEFAULT nextval('profile_entry_seq'),
			added_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, item_id, media_type)
		)`,
		`CREATE TABLE IF NOT EXISTS user_watch_history (
			user_id TEXT NOT NULL,
			item_id BIGINT NOT NULL,
			media_type TEXT NOT NULL CHECK (media_type IN ('movie', 'tv')),
			seq BIGINT NOT NULL DEFAULT nextval('profile_entry_seq'),
			watched_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_favorites_user ON user_favorites(user_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_user_watch_history_user ON user_watch_history(user_id, seq)`,
	}

	for _, q := range queries {
		if _, err := s.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Profile implements Provider.
func (s *Store) Profile(ctx context.Context, userID string) (*Profile, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = ?)`, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	favorites, err := s.refs(ctx, `SELECT item_id, media_type FROM user_favorites WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	history, err := s.refs(ctx, `SELECT item_id, media_type FROM user_watch_history WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch history: %w", err)
	}

	return &Profile{UserID: userID, Favorites: favorites, WatchHistory: history}, nil
}

func (s *Store) refs(ctx context.Context, query, userID string) ([]MediaRef, error) {
	rows, err := s.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []MediaRef{}
	for rows.Next() {
		var r MediaRef
		if err := rows.Scan(&r.ItemID, &r.MediaType); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// EnsureUser creates an empty profile if none exists.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	_, err := s.conn.ExecContext(ctx, `INSERT INTO users (user_id) VALUES (?) ON CONFLICT DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// AddFavorite appends ref to the user's favorites. Adding an existing
// favorite is a no-op.
func (s *Store) AddFavorite(ctx context.Context, userID string, ref MediaRef) error {
	if err := s.EnsureUser(ctx, userID); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO user_favorites (user_id, item_id, media_type) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		userID, ref.ItemID, ref.MediaType)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes ref from the user's favorites.
func (s *Store) RemoveFavorite(ctx context.Context, userID string, ref MediaRef) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND item_id = ? AND media_type = ?`,
		userID, ref.ItemID, ref.MediaType)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// RecordWatch appends ref to the user's watch history.
func (s *Store) RecordWatch(ctx context.Context, userID string, ref MediaRef) error {
	if err := s.EnsureUser(ctx, userID); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO user_watch_history (user_id, item_id, media_type) VALUES (?, ?, ?)`,
		userID, ref.ItemID, ref.MediaType)
	if err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

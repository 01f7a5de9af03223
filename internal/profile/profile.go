// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package profile provides the user preference data the recommendation
// engine reads: favorites and watch history.
package profile

import (
	"context"
	"errors"
	"sync"
)

// ErrUserNotFound is returned when no profile exists for a user ID.
var ErrUserNotFound = errors.New("user not found")

// Media types stored in a profile.
const (
	MediaMovie = "movie"
	MediaTV    = "tv"
)

// MediaRef identifies a catalog item.
type MediaRef struct {
	ItemID    int64  `json:"movieId"`
	MediaType string `json:"mediaType"`
}

// Profile is a user's preference data, oldest entries first.
type Profile struct {
	UserID       string     `json:"userId"`
	Favorites    []MediaRef `json:"favorites"`
	WatchHistory []MediaRef `json:"watchHistory"`
}

// Provider loads profiles.
type Provider interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// StaticProvider serves profiles from memory.
type StaticProvider struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewStaticProvider returns a provider holding profiles.
func NewStaticProvider(profiles ...*Profile) *StaticProvider {
	p := &StaticProvider{profiles: make(map[string]*Profile, len(profiles))}
	for _, prof := range profiles {
		p.profiles[prof.UserID] = prof
	}
	return p
}

// Profile implements Provider.
func (p *StaticProvider) Profile(_ context.Context, userID string) (*Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prof, ok := p.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *prof
	return &cp, nil
}

// Put adds or replaces a profile.
func (p *StaticProvider) Put(prof *Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[prof.UserID] = prof
}

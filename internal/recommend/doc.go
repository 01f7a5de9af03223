// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend builds personalized recommendation lists from a user's
// favorites and watch history.
//
// # Strategies
//
// Four strategies contribute candidates, merged in this order:
//
//   - favorites_genre: details for up to 5 favorites, top 3 genres, one
//     popularity-sorted discover call, up to 10 new items.
//   - favorites_similar: similar titles for up to 3 favorites, up to 5 new
//     items each.
//   - watch_history_genre: as favorites_genre over watch history, sorted by
//     rating with at least 100 votes.
//   - trending: daily trending movies, only when fewer than 10 items were
//     collected, filling up to the cap of 20.
//
// The first three run concurrently. Their output is merged in the fixed
// order above with one seen set keyed by item ID, so the first producer of
// an item wins and the result does not depend on completion order.
//
// # Failure Handling
//
// A failed upstream lookup is logged and skipped. Recommend only returns an
// error when the profile store fails or the caller's context ends.
//
// # Usage
//
//	engine := recommend.NewEngine(catalogService, profileStore, recommend.DefaultConfig())
//	res, err := engine.Recommend(ctx, userID)
package recommend

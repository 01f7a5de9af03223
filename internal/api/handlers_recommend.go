// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
)

// recommendationsKey is the per-user response cache key. Its family keeps
// it out of reach of the catalog passthrough.
func recommendationsKey(userID string) string {
	return catalog.CacheKey(catalog.FamilyRecommendations, "/recommendations", url.Values{"user": {userID}})
}

// hasRecommendations keeps empty lists out of the cache so a profile that
// gains favorites is not answered from a cached empty result.
func hasRecommendations(payload json.RawMessage) bool {
	var body struct {
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	return json.Unmarshal(payload, &body) == nil && len(body.Recommendations) > 0
}

// Recommendations serves the authenticated user's recommendations, cached
// per user.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeAuthError(w, r, auth.ErrMissingToken)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.recommendTimeout)
	defer cancel()

	res, err := h.catalog.Compute(ctx, recommendationsKey(userID), h.recommendTTL,
		func(ctx context.Context) (json.RawMessage, error) {
			result, err := h.recommender.Recommend(ctx, userID)
			if err != nil {
				return nil, err
			}
			return json.Marshal(result)
		},
		catalog.WithCacheType("recommendations"),
		catalog.WithCacheable(hasRecommendations),
	)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

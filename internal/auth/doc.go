// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth verifies the bearer tokens that guard personalized routes.

Tokens are issued by the account service and signed with HMAC-SHA256 using
the shared JWT_SECRET. The only claim this service reads is userId, which
keys the profile lookup for recommendations.

Usage:

	verifier, err := auth.NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
	    return err
	}

	r.With(auth.RequireUser(verifier, writeAuthError)).
	    Get("/recommendations", h.Recommendations)

	// In the handler
	userID, _ := auth.UserIDFromContext(r.Context())

Tokens with a signing method other than HS256, an expired exp claim, or no
userId claim are rejected with ErrInvalidToken.
*/
package auth

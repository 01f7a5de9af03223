// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequireUser(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	valid, _ := v.GenerateToken("user-42", time.Hour)

	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErr    error
		wantUser   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, nil, "user-42"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, nil, "user-42"},
		{"no header", "", http.StatusUnauthorized, ErrMissingToken, ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ErrMissingToken, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ErrMissingToken, ""},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized, ErrInvalidToken, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			var gotErr error
			mw := RequireUser(v, func(w http.ResponseWriter, _ *http.Request, err error) {
				gotErr = err
				w.WriteHeader(http.StatusUnauthorized)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErr != nil && !errors.Is(gotErr, tt.wantErr) {
				t.Errorf("error = %v, want %v", gotErr, tt.wantErr)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestRequireUser_DefaultErrorWriter(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	rec := httptest.NewRecorder()
	RequireUser(v, nil)(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Error("UserIDFromContext() ok = true on bare context")
	}
}

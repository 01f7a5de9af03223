// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func TestNewVerifier(t *testing.T) {
	if _, err := NewVerifier(""); err == nil {
		t.Error("NewVerifier(\"\") expected error, got nil")
	}
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error = %v", err)
	}
	if v == nil {
		t.Error("NewVerifier() returned nil verifier")
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	token, err := v.GenerateToken("64b7f0c2a1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "64b7f0c2a1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "64b7f0c2a1")
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestVerify_Rejects(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	other, _ := NewVerifier("another_secret_that_is_also_long_enough_123")
	foreign, _ := other.GenerateToken("u1", time.Hour)
	expired, _ := v.GenerateToken("u1", -time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"missing userId", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
		{"HS512", sign(t, jwt.SigningMethodHS512, []byte(testSecret), &Claims{UserID: "u1"})},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &Claims{UserID: "u1"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

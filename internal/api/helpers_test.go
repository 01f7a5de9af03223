// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/recommend"
)

const testSecret = "route_layer_test_secret_with_enough_length_42"

// fakeFetcher answers by request signature.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, path string, params url.Values) (json.RawMessage, error) {
	sig := catalog.Signature(path, params)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sig]++
	if err, ok := f.errs[sig]; ok {
		return nil, err
	}
	if body, ok := f.responses[sig]; ok {
		return json.RawMessage(body), nil
	}
	return nil, &catalog.UpstreamError{Path: sig, Cause: catalog.ErrNotFound}
}

func (f *fakeFetcher) callCount(sig string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sig]
}

type fakeRecommender struct {
	mu     sync.Mutex
	result *recommend.Result
	err    error
	calls  int
}

func (f *fakeRecommender) Recommend(_ context.Context, _ string) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

type fakeBreaker struct {
	state      string
	retryAfter time.Duration
}

func (b fakeBreaker) State() string             { return b.state }
func (b fakeBreaker) RetryAfter() time.Duration { return b.retryAfter }

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

type testServer struct {
	handler     http.Handler
	fetcher     *fakeFetcher
	recommender *fakeRecommender
	verifier    *auth.Verifier
}

type serverOption func(*HandlerConfig, *RouterConfig)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	fetcher := newFakeFetcher()
	rc := cache.NewResponseCache(cache.NewMemoryStore(), cache.WithStaleRetention(time.Hour))
	rec := &fakeRecommender{result: &recommend.Result{
		Recommendations: []json.RawMessage{json.RawMessage(`{"id":1}`)},
		Reason:          recommend.ReasonPreferences,
	}}
	verifier, err := auth.NewVerifier(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	hcfg := HandlerConfig{
		Catalog:     catalog.NewService(rc, fetcher),
		Recommender: rec,
		Breaker:     fakeBreaker{state: "closed"},
		Checks:      map[string]Pinger{"cache": rc},
	}
	rcfg := RouterConfig{Middleware: &ChiMiddlewareConfig{RateLimitDisabled: true}}
	for _, opt := range opts {
		opt(&hcfg, &rcfg)
	}

	router := NewRouter(NewHandler(hcfg), verifier, rcfg)
	return &testServer{
		handler:     router.Setup(),
		fetcher:     fetcher,
		recommender: rec,
		verifier:    verifier,
	}
}

func (s *testServer) get(t *testing.T, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, rec.Body.String())
	}
	if resp.Success {
		t.Error("envelope success = true, want false")
	}
	if resp.Error == nil {
		t.Fatalf("envelope has no error: %s", rec.Body.String())
	}
	return resp.Error
}

// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...func(*ClientConfig)) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL:     server.URL,
		BearerToken: "test-token",
		Timeout:     time.Second,
		Retry:       fastRetry(),
		Breaker:     BreakerSettings{Name: "test-client-" + t.Name(), Threshold: 5, Cooldown: time.Minute},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, server
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("NewClient() without base URL should fail")
	}
}

func TestClient_Fetch_SendsAuthAndParams(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club"}`))
	}))

	payload, err := client.Fetch(context.Background(), "/movie/550", url.Values{"language": {"en-US"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(payload) != `{"id":550,"title":"Fight Club"}` {
		t.Errorf("payload = %s", payload)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
	if gotPath != "/movie/550" {
		t.Errorf("path = %q, want /movie/550", gotPath)
	}
	if gotQuery != "language=en-US" {
		t.Errorf("query = %q, want language=en-US", gotQuery)
	}
}

func TestClient_Fetch_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
		check     func(t *testing.T, err error)
	}{
		{
			name: "404 is not found", status: http.StatusNotFound, body: `{"status_message":"missing"}`, wantCalls: 1,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("error = %v, want ErrNotFound", err)
				}
			},
		},
		{
			name: "401 is client error", status: http.StatusUnauthorized, body: `{"status_message":"Invalid API key"}`, wantCalls: 1,
			check: func(t *testing.T, err error) {
				var clientErr *ClientError
				if !errors.As(err, &clientErr) {
					t.Fatalf("error = %v, want *ClientError", err)
				}
				if clientErr.Status != 401 || clientErr.Message != "Invalid API key" {
					t.Errorf("ClientError = %+v", clientErr)
				}
			},
		},
		{
			name: "503 is retried then transient", status: http.StatusServiceUnavailable, body: `oops`, wantCalls: 3,
			check: func(t *testing.T, err error) {
				if !IsRetryable(err) {
					t.Errorf("error = %v, want transient", err)
				}
				var upstreamErr *UpstreamError
				if !errors.As(err, &upstreamErr) || upstreamErr.Path != "/movie/1" {
					t.Errorf("error = %v, want *UpstreamError for /movie/1", err)
				}
			},
		},
		{
			name: "429 is retried", status: http.StatusTooManyRequests, body: `{}`, wantCalls: 3,
			check: func(t *testing.T, err error) {
				if !IsRetryable(err) {
					t.Errorf("error = %v, want transient", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.Fetch(context.Background(), "/movie/1", nil)
			if err == nil {
				t.Fatal("Fetch() error = nil")
			}
			tt.check(t, err)
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("upstream calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClient_Fetch_RetryThenSuccess(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	payload, err := client.Fetch(context.Background(), "/movie/popular", nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(payload) != `{"ok":true}` {
		t.Errorf("payload = %s", payload)
	}
	if calls != 3 {
		t.Errorf("upstream calls = %d, want 3", calls)
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}), func(cfg *ClientConfig) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.Retry = RetryPolicy{MaxAttempts: 1}
	})

	_, err := client.Fetch(context.Background(), "/movie/550", nil)
	if !IsTimeout(err) {
		t.Errorf("Fetch() error = %v, want timeout", err)
	}
}

func TestClient_Fetch_InvalidJSONIsTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error</html>`))
	}), func(cfg *ClientConfig) {
		cfg.Retry = RetryPolicy{MaxAttempts: 1}
	})

	_, err := client.Fetch(context.Background(), "/movie/550", nil)
	if !IsRetryable(err) {
		t.Errorf("Fetch() error = %v, want transient", err)
	}
}

func TestClient_Fetch_BreakerOpensAndShortCircuits(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}), func(cfg *ClientConfig) {
		cfg.Retry = RetryPolicy{MaxAttempts: 1}
		cfg.Breaker.Threshold = 2
	})

	for i := 0; i < 2; i++ {
		_, _ = client.Fetch(context.Background(), "/movie/1", nil)
	}
	if client.Breaker().State() != "open" {
		t.Fatalf("breaker state = %s, want open", client.Breaker().State())
	}

	before := atomic.LoadInt32(&calls)
	_, err := client.Fetch(context.Background(), "/movie/1", nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Fetch() error = %v, want ErrCircuitOpen", err)
	}
	if after := atomic.LoadInt32(&calls); after != before {
		t.Errorf("network calls while open = %d, want 0", after-before)
	}
}

func TestClient_Fetch_DeduplicatesConcurrentCalls(t *testing.T) {
	const callers = 20

	var calls int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(arrived) })
		<-release
		_, _ = w.Write([]byte(`{"results":[{"id":1}]}`))
	}))

	var wg sync.WaitGroup
	results := make([]json.RawMessage, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.Fetch(context.Background(), "/trending/movie/day", url.Values{"page": {"1"}})
		}(i)
	}

	<-arrived
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d error = %v", i, errs[i])
			continue
		}
		if string(results[i]) != `{"results":[{"id":1}]}` {
			t.Errorf("caller %d payload = %s", i, results[i])
		}
	}

	// The entry is released, so the next call hits the network again.
	if _, err := client.Fetch(context.Background(), "/trending/movie/day", url.Values{"page": {"1"}}); err != nil {
		t.Fatalf("follow-up Fetch() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls after settle = %d, want 2", calls)
	}
}

func TestClient_Fetch_DeduplicatesConcurrentFailures(t *testing.T) {
	const callers = 10

	var calls int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(arrived) })
		<-release
		http.Error(w, `{"status_message":"The resource you requested could not be found."}`, http.StatusNotFound)
	}))

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Fetch(context.Background(), "/movie/999999", nil)
		}(i)
	}

	<-arrived
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
	for i, err := range errs {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("caller %d error = %v, want ErrNotFound", i, err)
		}
	}

	// A failed call is not remembered either.
	if _, err := client.Fetch(context.Background(), "/movie/999999", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("follow-up Fetch() error = %v, want ErrNotFound", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("upstream calls after settle = %d, want 2", n)
	}
}

func TestClient_Fetch_CallerCancelDoesNotFailOthers(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"id":7}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := client.Fetch(ctx, "/movie/7", nil)
		first <- err
	}()

	second := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, err := client.Fetch(context.Background(), "/movie/7", nil)
		second <- err
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-second; err != nil {
		t.Errorf("surviving caller error = %v, want nil", err)
	}
}

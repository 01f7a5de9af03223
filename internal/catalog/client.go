// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	// maxErrorBodySize limits how much of an error response is read.
	maxErrorBodySize = 64 * 1024

	// maxPayloadSize caps successful response bodies.
	maxPayloadSize = 8 * 1024 * 1024

	defaultAttemptTimeout = 10 * time.Second
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration // per attempt
	RateLimit   float64       // requests per second, 0 disables
	Burst       int
	Retry       RetryPolicy
	Breaker     BreakerSettings
	HTTPClient  *http.Client
}

// Client performs resilient GETs against the catalog provider. One Client
// owns one Breaker and one Deduplicator, shared by every caller.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	retry   RetryPolicy
	breaker *Breaker
	dedup   Deduplicator
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog client: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("catalog client: invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
		timeout: timeout,
		http:    httpClient,
		retry:   retry,
		breaker: NewBreaker(cfg.Breaker),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Fetch returns the raw JSON payload for GET path?params.
//
// Identical concurrent calls share one execution. Each execution retries
// transient failures through the breaker. Every failure is returned as an
// *UpstreamError.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	sig := Signature(path, params)

	payload, _, err := c.dedup.Do(ctx, sig, func(ctx context.Context) (json.RawMessage, error) {
		return c.retry.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil, fmt.Errorf("rate limiter: %w", err)
				}
			}
			return c.breaker.Execute(func() (json.RawMessage, error) {
				return c.do(ctx, path, params)
			})
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &UpstreamError{Path: sig, Cause: err}
	}
	return payload, nil
}

// do performs one network attempt bounded by the per-attempt timeout.
func (c *Client) do(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if q := params.Encode(); q != "" {
		reqURL += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("transient", time.Since(start))
		return nil, &UpstreamTransientError{Timeout: isTimeoutErr(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
		metrics.RecordUpstreamRequest("success", time.Since(start))
		if err != nil {
			return nil, &UpstreamTransientError{Status: resp.StatusCode, Timeout: isTimeoutErr(ctx, err), Err: err}
		}
		if !json.Valid(body) {
			return nil, &UpstreamTransientError{Status: resp.StatusCode, Err: errors.New("invalid JSON payload")}
		}
		return json.RawMessage(body), nil

	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordUpstreamRequest("not_found", time.Since(start))
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		metrics.RecordUpstreamRequest("transient", time.Since(start))
		body := readBodyForError(resp.Body)
		logging.Ctx(ctx).Debug().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(body)).
			Msg("Catalog provider transient failure")
		return nil, &UpstreamTransientError{
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}

	default:
		metrics.RecordUpstreamRequest("client_error", time.Since(start))
		return nil, &ClientError{
			Status:  resp.StatusCode,
			Message: providerMessage(readBodyForError(resp.Body)),
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

// providerMessage extracts status_message from a provider error body.
func providerMessage(body []byte) string {
	var envelope struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.StatusMessage != "" {
		return envelope.StatusMessage
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func isTimeoutErr(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

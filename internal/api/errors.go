// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/validation"
)

// Retry-After sent for an open circuit when the breaker cannot say.
const defaultRetryAfter = 30 * time.Second

// BreakerStatus reports circuit breaker state for error mapping and
// readiness. *catalog.Breaker implements it.
type BreakerStatus interface {
	State() string
	RetryAfter() time.Duration
}

// writeCatalogError maps a catalog or infrastructure failure onto the error
// envelope.
func (h *Handler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		clientErr *catalog.ClientError
		verr      *validation.RequestValidationError
	)

	switch {
	case errors.As(err, &verr):
		h.writeValidationError(w, r, verr)

	case errors.As(err, &clientErr):
		status := clientErr.Status
		if status < 400 || status > 499 {
			status = http.StatusBadRequest
		}
		message := clientErr.Message
		if message == "" {
			message = http.StatusText(status)
		}
		writeError(w, r, status, ErrCodeUpstreamClient, message, nil)

	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "The requested resource could not be found", nil)

	case errors.Is(err, catalog.ErrCircuitOpen):
		w.Header().Set("Retry-After", strconv.Itoa(h.retryAfterSeconds()))
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Catalog provider is temporarily unavailable. Please try again later.", nil)

	case catalog.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, ErrCodeGatewayTimeout, "Request timeout. Please try again.", nil)

	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request canceled by client")

	case isUpstream(err):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog provider request failed")
		writeError(w, r, http.StatusBadGateway, ErrCodeExternalServiceFail, "Catalog provider request failed", nil)

	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal Server Error", nil)
	}
}

func isUpstream(err error) bool {
	var (
		upstream  *catalog.UpstreamError
		transient *catalog.UpstreamTransientError
	)
	return errors.As(err, &upstream) || errors.As(err, &transient)
}

func (h *Handler) retryAfterSeconds() int {
	d := defaultRetryAfter
	if h.breaker != nil {
		if ra := h.breaker.RetryAfter(); ra > 0 {
			d = ra
		}
	}
	return int((d + time.Second - 1) / time.Second)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	writeError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// writeAuthError is the auth.ErrorFunc for protected routes.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid or expired token"
	if errors.Is(err, auth.ErrMissingToken) {
		message = "Access denied. No token provided."
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="marquee"`)
	writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

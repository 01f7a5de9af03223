// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const readinessTimeout = 2 * time.Second

// ReadinessStatus is the /health/ready body.
type ReadinessStatus struct {
	Ready      bool              `json:"ready"`
	Components map[string]string `json:"components"`
	Circuit    string            `json:"circuit,omitempty"`
}

// HealthLive returns 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady pings every store and reports the breaker state. An open
// circuit alone does not fail readiness; stale responses are still served.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := ReadinessStatus{Ready: true, Components: make(map[string]string, len(h.checks))}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			status.Ready = false
			status.Components[name] = "unavailable: " + err.Error()
			continue
		}
		status.Components[name] = "ok"
	}
	if h.breaker != nil {
		status.Circuit = h.breaker.State()
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, APIResponse{Success: status.Ready, Data: status})
}

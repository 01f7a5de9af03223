// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/validation"
)

// RegionalPopular serves popular titles for a language and region.
func (h *Handler) RegionalPopular(w http.ResponseWriter, r *http.Request) {
	req, verr := validation.NewRegionalRequest(r.URL.Query())
	if verr != nil {
		h.writeValidationError(w, r, verr)
		return
	}

	res, err := h.catalog.RegionalPopular(r.Context(), catalog.Region{Language: req.Language, Country: req.Region}, req.Page)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

// RegionalTrending serves trending titles for a language and region.
func (h *Handler) RegionalTrending(w http.ResponseWriter, r *http.Request) {
	req, verr := validation.NewRegionalRequest(r.URL.Query())
	if verr != nil {
		h.writeValidationError(w, r, verr)
		return
	}

	res, err := h.catalog.RegionalTrending(r.Context(), catalog.Region{Language: req.Language, Country: req.Region}, req.Page)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

// Passthrough proxies GET /movies/<provider path> through the response
// cache with the path's TTL.
func (h *Handler) Passthrough(w http.ResponseWriter, r *http.Request) {
	upstreamPath, ok := cleanUpstreamPath(chi.URLParam(r, "*"))
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "The requested resource could not be found", nil)
		return
	}

	ttl := catalog.TTLFor(upstreamPath)
	res, err := h.catalog.Get(r.Context(), upstreamPath, r.URL.Query(), ttl)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, ttl)
}

// cleanUpstreamPath normalizes a wildcard capture into an absolute provider
// path. Empty paths and dot segments are refused.
func cleanUpstreamPath(raw string) (string, bool) {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return "", false
	}
	for _, seg := range strings.Split(raw, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return path.Clean("/" + raw), true
}

// Search serves /search and /search/{kind}. A bare /search is a multi search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind == "" {
		kind = catalog.SearchMulti
	}

	req, verr := validation.NewSearchRequest(kind, r.URL.Query())
	if verr != nil {
		h.writeValidationError(w, r, verr)
		return
	}

	res, err := h.catalog.Search(r.Context(), req.Kind, req.Query, req.Page)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

// Genres serves the genre list for a media type.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	req := &validation.GenresRequest{MediaType: chi.URLParam(r, "mediaType")}
	if verr := validation.ValidateStruct(req); verr != nil {
		h.writeValidationError(w, r, verr)
		return
	}

	res, err := h.catalog.Genres(r.Context(), req.MediaType)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

// Discover serves a filtered discover listing. Unknown filters are dropped.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	req, verr := validation.NewDiscoverRequest(chi.URLParam(r, "mediaType"), r.URL.Query())
	if verr != nil {
		h.writeValidationError(w, r, verr)
		return
	}

	res, err := h.catalog.Discover(r.Context(), req.MediaType, r.URL.Query())
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeResult(w, res, 0)
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/harmonics/internal/apperr"
)

// RecommendArtists returns ranked artist recommendations. The method
// query parameter selects the ranking strategy.
func (h *Handler) RecommendArtists(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	method := r.URL.Query().Get("method")
	if method == "" {
		rw.DomainError(apperr.NoQueryParameter("method"))
		return
	}

	recs, err := h.recommender.RecommendArtists(r.Context(), username, method)
	if err != nil {
		rw.DomainError(err)
		return
	}
	rw.Success(recs)
}

// RecommendReleases returns friend-sourced release picks within a genre.
func (h *Handler) RecommendReleases(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	genre := r.URL.Query().Get("genre")
	if genre == "" {
		rw.DomainError(apperr.NoQueryParameter("genre"))
		return
	}

	picks, err := h.recommender.FriendPicks(r.Context(), username, genre)
	if err != nil {
		rw.DomainError(err)
		return
	}
	rw.Success(picks)
}

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

// GetArtist returns a full artist record including releases.
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	artistID := chi.URLParam(r, "artist_id")

	artist, err := h.reader.FindArtist(r.Context(), artistID)
	if err != nil {
		rw.DomainError(err)
		return
	}
	if artist == nil {
		rw.DomainError(apperr.ArtistNotFound(artistID))
		return
	}
	rw.Success(artist)
}

// ListArtists returns the artists tagged with the genre query parameter.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	genre := r.URL.Query().Get("genre")
	if genre == "" {
		rw.DomainError(apperr.NoQueryParameter("genre"))
		return
	}

	artists, err := h.reader.FindArtistsByGenre(r.Context(), genre)
	if err != nil {
		rw.DomainError(err)
		return
	}
	if len(artists) == 0 {
		rw.DomainError(apperr.GenreNotFound(genre))
		return
	}
	rw.Success(artists)
}

// GetRelease resolves a release ID to its name and owning artist.
func (h *Handler) GetRelease(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	releaseID := chi.URLParam(r, "release_id")

	release, err := h.reader.FindRelease(r.Context(), releaseID)
	if err != nil {
		rw.DomainError(err)
		return
	}
	if release == nil {
		rw.DomainError(apperr.ReleaseNotFound(releaseID))
		return
	}
	rw.Success(release)
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/harmonics/internal/apperr"
	"github.com/tomtom215/harmonics/internal/coordinator"
)

// GetUser returns the profile summary with relationship counts.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	summary, err := h.reader.FindUserSummary(r.Context(), username)
	if err != nil {
		rw.DomainError(err)
		return
	}
	if summary == nil {
		rw.DomainError(apperr.UserNotFound(username))
		return
	}
	rw.Success(summary)
}

// GetUserFriends returns the user's friend list.
func (h *Handler) GetUserFriends(w http.ResponseWriter, r *http.Request) {
	h.userList(w, r, "friends")
}

// GetUserRatings returns the user's rating list.
func (h *Handler) GetUserRatings(w http.ResponseWriter, r *http.Request) {
	h.userList(w, r, "ratings")
}

// GetUserFollows returns the user's follow list.
func (h *Handler) GetUserFollows(w http.ResponseWriter, r *http.Request) {
	h.userList(w, r, "follows")
}

func (h *Handler) userList(w http.ResponseWriter, r *http.Request, kind string) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	user, err := h.reader.FindUserLists(r.Context(), username)
	if err != nil {
		rw.DomainError(err)
		return
	}
	if user == nil {
		rw.DomainError(apperr.UserNotFound(username))
		return
	}

	switch kind {
	case "friends":
		rw.Success(user.Friends)
	case "ratings":
		rw.Success(user.Ratings)
	case "follows":
		rw.Success(user.Follows)
	}
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	err := h.mutator.Register(r.Context(), coordinator.RegisterParams{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		rw.DomainError(err)
		return
	}
	rw.Created(map[string]string{"username": req.Username})
}

// DeleteUser removes a user and cascades through friends, ratings and
// follows.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	if err := h.mutator.DeleteAccount(r.Context(), username); err != nil {
		rw.DomainError(err)
		return
	}
	rw.NoContent()
}

// PatchUser updates profile fields.
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	err := h.mutator.UpdateProfile(r.Context(), username, coordinator.ProfileUpdate{
		Password: req.Password,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		rw.DomainError(err)
		return
	}
	rw.Success(map[string]string{"username": username})
}

// CreateRating rates a release on behalf of the user.
func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	if err := h.mutator.Rate(r.Context(), username, req.ID, *req.Rating); err != nil {
		rw.DomainError(err)
		return
	}
	rw.Created(map[string]interface{}{"id": req.ID, "rating": *req.Rating})
}

// DeleteRating removes the user's rating of a release.
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")
	releaseID := chi.URLParam(r, "release_id")

	if err := h.mutator.Unrate(r.Context(), username, releaseID); err != nil {
		rw.DomainError(err)
		return
	}
	rw.NoContent()
}

// CreateFollow follows an artist.
func (h *Handler) CreateFollow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	if err := h.mutator.Follow(r.Context(), username, req.ID); err != nil {
		rw.DomainError(err)
		return
	}
	rw.Created(map[string]string{"id": req.ID})
}

// DeleteFollow unfollows an artist.
func (h *Handler) DeleteFollow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")
	artistID := chi.URLParam(r, "artist_id")

	if err := h.mutator.Unfollow(r.Context(), username, artistID); err != nil {
		rw.DomainError(err)
		return
	}
	rw.NoContent()
}

// CreateFriend records a friendship between the path user and the body
// user.
func (h *Handler) CreateFriend(w http.ResponseWriter, r *http.Request) {
	var req FriendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")

	if err := h.mutator.Befriend(r.Context(), username, req.Username); err != nil {
		rw.DomainError(err)
		return
	}
	rw.Created(map[string]string{"username": req.Username})
}

// DeleteFriend removes a friendship.
func (h *Handler) DeleteFriend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username := chi.URLParam(r, "username")
	friend := chi.URLParam(r, "friend_username")

	if err := h.mutator.Unfriend(r.Context(), username, friend); err != nil {
		rw.DomainError(err)
		return
	}
	rw.NoContent()
}

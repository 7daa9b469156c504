// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCatalogFormatting(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantCode   Code
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "user not found",
			err:        UserNotFound("alice"),
			wantCode:   CodeUserNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "User with username 'alice' not found.",
		},
		{
			name:       "artist not found",
			err:        ArtistNotFound("a1"),
			wantCode:   CodeArtistNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Artist with ID 'a1' not found.",
		},
		{
			name:       "release not found",
			err:        ReleaseNotFound("r9"),
			wantCode:   CodeReleaseNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Release with ID 'r9' not found.",
		},
		{
			name:       "rating not found keeps release-first parameter order",
			err:        RatingNotFound("alice", "r1"),
			wantCode:   CodeRatingNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Rating of release with ID 'r1' by user with username 'alice' not found.",
		},
		{
			name:       "follow not found",
			err:        FollowNotFound("alice", "a1"),
			wantCode:   CodeFollowNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Follow of artist with ID 'a1' by user with username 'alice' not found.",
		},
		{
			name:       "friendship not found",
			err:        FriendshipNotFound("alice", "bob"),
			wantCode:   CodeFriendshipNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Friendship between user with username 'alice' and user with username 'bob' not found.",
		},
		{
			name:       "genre not found",
			err:        GenreNotFound("jazz"),
			wantCode:   CodeGenreNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No artists found for the genre 'jazz'.",
		},
		{
			name:       "user already exists",
			err:        UserAlreadyExists("alice"),
			wantCode:   CodeUserAlreadyExists,
			wantStatus: http.StatusConflict,
			wantMsg:    "A user with the username 'alice' already exists.",
		},
		{
			name:       "rating already exists",
			err:        RatingAlreadyExists("alice", "r1"),
			wantCode:   CodeRatingAlreadyExists,
			wantStatus: http.StatusConflict,
			wantMsg:    "The user with username 'alice' already rated the release with ID 'r1'.",
		},
		{
			name:       "follow already exists",
			err:        FollowAlreadyExists("alice", "a1"),
			wantCode:   CodeFollowAlreadyExists,
			wantStatus: http.StatusConflict,
			wantMsg:    "The user with username 'alice' already follows the artist with ID 'a1'.",
		},
		{
			name:       "friendship already exists",
			err:        FriendshipAlreadyExists("alice", "bob"),
			wantCode:   CodeFriendshipAlreadyExists,
			wantStatus: http.StatusConflict,
			wantMsg:    "The user with username 'alice' is already friends with the user with username 'bob'.",
		},
		{
			name:       "property not provided",
			err:        PropertyNotProvided("username"),
			wantCode:   CodePropertyNotProvided,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "'username' was not provided.",
		},
		{
			name:       "no valid fields",
			err:        NoValidFields(),
			wantCode:   CodeNoValidFields,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "No valid fields to update or remove.",
		},
		{
			name:       "no query parameter",
			err:        NoQueryParameter("genre"),
			wantCode:   CodeNoQueryParameter,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Missing required query parameter 'genre'.",
		},
		{
			name:       "invalid rec method",
			err:        InvalidRecMethod("bogus"),
			wantCode:   CodeInvalidRecMethod,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid recommendation method 'bogus'.",
		},
		{
			name:       "no ratings found",
			err:        NoRatingsFound("alice"),
			wantCode:   CodeNoRatingsFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No ratings greater than 6 were found for the user with username 'alice'.",
		},
		{
			name:       "no genre data found",
			err:        NoGenreDataFound("alice"),
			wantCode:   CodeNoGenreDataFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No genre data was found for the user with username 'alice'.",
		},
		{
			name:       "no friends ratings found",
			err:        NoFriendsRatingsFound(),
			wantCode:   CodeNoFriendsRatings,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No ratings > 6 found for any friends.",
		},
		{
			name:       "no friend recs found",
			err:        NoFriendRecsFound("alice", "jazz"),
			wantCode:   CodeNoFriendRecsFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No friend recommendations found for user 'alice' in genre 'jazz'",
		},
		{
			name:       "artist recs not found",
			err:        ArtistRecsNotFound("alice"),
			wantCode:   CodeArtistRecsNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "No recommendations for the user with username 'alice'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestAs_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("rate release: %w", RatingAlreadyExists("alice", "r1"))

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find catalog error in wrapped chain")
	}
	if appErr.Code != CodeRatingAlreadyExists {
		t.Errorf("Code = %q, want %q", appErr.Code, CodeRatingAlreadyExists)
	}
}

func TestAs_PlainError(t *testing.T) {
	if _, ok := As(errors.New("boom")); ok {
		t.Error("expected As to reject a non-catalog error")
	}
}

func TestClassifiers(t *testing.T) {
	if !IsNotFound(UserNotFound("alice")) {
		t.Error("UserNotFound should classify as not-found")
	}
	if IsNotFound(UserAlreadyExists("alice")) {
		t.Error("UserAlreadyExists should not classify as not-found")
	}
	if !IsConflict(FollowAlreadyExists("alice", "a1")) {
		t.Error("FollowAlreadyExists should classify as conflict")
	}
	if IsConflict(errors.New("boom")) {
		t.Error("plain error should not classify as conflict")
	}
}

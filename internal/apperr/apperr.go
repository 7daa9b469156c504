// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package apperr defines the closed catalog of domain errors.
//
// Every error condition a domain operation can report is one of the tagged
// kinds below, carrying its identifying parameters and mapping to a stable
// machine-readable code, a formatted user-facing message, and an HTTP status.
// Handlers discriminate with errors.As:
//
//	var domainErr *apperr.Error
//	if errors.As(err, &domainErr) {
//	    rw.Error(domainErr.Status, string(domainErr.Code), domainErr.Message)
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code, stable across releases.
type Code string

// The full error catalog. Codes and message formats are part of the API
// contract; clients match on Code.
const (
	// Entity not found
	CodeArtistNotFound     Code = "ArtistNotFound"
	CodeGenreNotFound      Code = "GenreNotFound"
	CodeReleaseNotFound    Code = "ReleaseNotFound"
	CodeUserNotFound       Code = "UserNotFound"
	CodeRatingNotFound     Code = "RatingNotFound"
	CodeFollowNotFound     Code = "FollowNotFound"
	CodeFriendshipNotFound Code = "FriendshipNotFound"

	// Recommendations not found
	CodeArtistRecsNotFound   Code = "ArtistRecsNotFound"
	CodeNoFriendRecsFound    Code = "NoFriendRecsFound"
	CodeNoGenreDataFound     Code = "NoGenreDataFound"
	CodeNoRatingsFound       Code = "NoRatingsFound"
	CodeNoFriendsRatings     Code = "NoFriendsRatingsFound"

	// Entity already exists
	CodeUserAlreadyExists       Code = "UserAlreadyExists"
	CodeRatingAlreadyExists     Code = "RatingAlreadyExists"
	CodeFollowAlreadyExists     Code = "FollowAlreadyExists"
	CodeFriendshipAlreadyExists Code = "FriendshipAlreadyExists"

	// Validation
	CodePropertyNotProvided Code = "PropertyNotProvided"
	CodeNoValidFields       Code = "NoValidFields"
	CodeNoQueryParameter    Code = "NoQueryParameter"
	CodeInvalidRecMethod    Code = "InvalidRecMethod"
)

// Error is a tagged domain error: one catalog kind with its parameters
// already formatted into Message.
type Error struct {
	Code    Code
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// As unwraps err into an *Error if it carries one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404-class catalog error.
func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409-class catalog error.
func IsConflict(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Status == http.StatusConflict
}

func notFound(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

// ArtistNotFound reports a missing artist.
func ArtistNotFound(id string) *Error {
	return notFound(CodeArtistNotFound, "Artist with ID '%s' not found.", id)
}

// GenreNotFound reports a genre with no artists.
func GenreNotFound(genre string) *Error {
	return notFound(CodeGenreNotFound, "No artists found for the genre '%s'.", genre)
}

// ReleaseNotFound reports a missing release.
func ReleaseNotFound(id string) *Error {
	return notFound(CodeReleaseNotFound, "Release with ID '%s' not found.", id)
}

// UserNotFound reports a missing user.
func UserNotFound(username string) *Error {
	return notFound(CodeUserNotFound, "User with username '%s' not found.", username)
}

// RatingNotFound reports a missing (user, release) rating.
func RatingNotFound(username, releaseID string) *Error {
	return notFound(CodeRatingNotFound,
		"Rating of release with ID '%s' by user with username '%s' not found.", releaseID, username)
}

// FollowNotFound reports a missing (user, artist) follow.
func FollowNotFound(username, artistID string) *Error {
	return notFound(CodeFollowNotFound,
		"Follow of artist with ID '%s' by user with username '%s' not found.", artistID, username)
}

// FriendshipNotFound reports a missing friendship pair.
func FriendshipNotFound(username1, username2 string) *Error {
	return notFound(CodeFriendshipNotFound,
		"Friendship between user with username '%s' and user with username '%s' not found.", username1, username2)
}

// ArtistRecsNotFound reports that no artist recommendations could be produced.
func ArtistRecsNotFound(username string) *Error {
	return notFound(CodeArtistRecsNotFound, "No recommendations for the user with username '%s'.", username)
}

// NoFriendRecsFound reports that no friend picks matched the requested genre.
func NoFriendRecsFound(username, genre string) *Error {
	return notFound(CodeNoFriendRecsFound,
		"No friend recommendations found for user '%s' in genre '%s'", username, genre)
}

// NoGenreDataFound reports that the user's liked releases have no genre data.
func NoGenreDataFound(username string) *Error {
	return notFound(CodeNoGenreDataFound,
		"No genre data was found for the user with username '%s'.", username)
}

// NoRatingsFound reports that the user has no strong ratings.
func NoRatingsFound(username string) *Error {
	return notFound(CodeNoRatingsFound,
		"No ratings greater than 6 were found for the user with username '%s'.", username)
}

// NoFriendsRatingsFound reports that no friend has any strong rating.
func NoFriendsRatingsFound() *Error {
	return notFound(CodeNoFriendsRatings, "No ratings > 6 found for any friends.")
}

// UserAlreadyExists reports a username conflict on registration.
func UserAlreadyExists(username string) *Error {
	return conflict(CodeUserAlreadyExists, "A user with the username '%s' already exists.", username)
}

// RatingAlreadyExists reports a duplicate (user, release) rating.
func RatingAlreadyExists(username, releaseID string) *Error {
	return conflict(CodeRatingAlreadyExists,
		"The user with username '%s' already rated the release with ID '%s'.", username, releaseID)
}

// FollowAlreadyExists reports a duplicate (user, artist) follow.
func FollowAlreadyExists(username, artistID string) *Error {
	return conflict(CodeFollowAlreadyExists,
		"The user with username '%s' already follows the artist with ID '%s'.", username, artistID)
}

// FriendshipAlreadyExists reports a duplicate friendship pair.
func FriendshipAlreadyExists(username1, username2 string) *Error {
	return conflict(CodeFriendshipAlreadyExists,
		"The user with username '%s' is already friends with the user with username '%s'.", username1, username2)
}

// PropertyNotProvided reports a missing required request body property.
func PropertyNotProvided(property string) *Error {
	return &Error{
		Code:    CodePropertyNotProvided,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("'%s' was not provided.", property),
	}
}

// NoValidFields reports a profile update with nothing to change.
func NoValidFields() *Error {
	return &Error{
		Code:    CodeNoValidFields,
		Status:  http.StatusUnprocessableEntity,
		Message: "No valid fields to update or remove.",
	}
}

// NoQueryParameter reports a missing required query parameter.
func NoQueryParameter(parameter string) *Error {
	return &Error{
		Code:    CodeNoQueryParameter,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Missing required query parameter '%s'.", parameter),
	}
}

// InvalidRecMethod reports an unrecognized recommendation method.
func InvalidRecMethod(method string) *Error {
	return &Error{
		Code:    CodeInvalidRecMethod,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Invalid recommendation method '%s'.", method),
	}
}

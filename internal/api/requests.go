// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/harmonics/internal/validation"
)

// RegisterRequest is the POST /v1/users body.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
}

// UpdateProfileRequest is the PATCH /v1/users/{username} body. Absent
// fields are untouched; an explicit empty name or bio clears the field.
type UpdateProfileRequest struct {
	Password *string `json:"password" validate:"omitempty,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// RateRequest is the POST /v1/users/{username}/ratings body.
type RateRequest struct {
	ID     string   `json:"id" validate:"required"`
	Rating *float64 `json:"rating" validate:"required,min=0,max=10"`
}

// FollowRequest is the POST /v1/users/{username}/follows body.
type FollowRequest struct {
	ID string `json:"id" validate:"required"`
}

// FriendRequest is the POST /v1/users/{username}/friends body.
type FriendRequest struct {
	Username string `json:"username" validate:"required"`
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		details := make([]map[string]string, 0, len(verr.Errors()))
		for _, fe := range verr.Errors() {
			details = append(details, map[string]string{
				"field":   fe.Field(),
				"message": fe.Error(),
			})
		}
		rw.ValidationError("Request validation failed", details)
		return false
	}
	return true
}

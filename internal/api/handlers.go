// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/harmonics/internal/coordinator"
	"github.com/tomtom215/harmonics/internal/models"
)

// Mutator is the coordinator surface the handlers drive. Every method
// performs an ordered dual write.
type Mutator interface {
	Register(ctx context.Context, params coordinator.RegisterParams) error
	DeleteAccount(ctx context.Context, username string) error
	UpdateProfile(ctx context.Context, username string, update coordinator.ProfileUpdate) error
	Rate(ctx context.Context, username, releaseID string, rating float64) error
	Unrate(ctx context.Context, username, releaseID string) error
	Follow(ctx context.Context, username, artistID string) error
	Unfollow(ctx context.Context, username, artistID string) error
	Befriend(ctx context.Context, username, friend string) error
	Unfriend(ctx context.Context, username, friend string) error
}

// Reader is the slice of the document store the read endpoints use.
type Reader interface {
	FindUserSummary(ctx context.Context, username string) (*models.UserSummary, error)
	FindUserLists(ctx context.Context, username string) (*models.User, error)
	FindArtist(ctx context.Context, artistID string) (*models.Artist, error)
	FindArtistsByGenre(ctx context.Context, genre string) ([]models.Artist, error)
	FindRelease(ctx context.Context, releaseID string) (*models.ReleaseRef, error)
}

// Recommender computes ranked recommendations.
type Recommender interface {
	RecommendArtists(ctx context.Context, username, method string) ([]models.ArtistRec, error)
	FriendPicks(ctx context.Context, username, genre string) ([]models.ReleasePick, error)
}

// HealthChecker reports readiness of a backing store.
type HealthChecker func(ctx context.Context) error

// Handler holds the dependencies behind the HTTP surface.
type Handler struct {
	mutator     Mutator
	reader      Reader
	recommender Recommender

	// Store probes for readiness checks, keyed by store name.
	checks map[string]HealthChecker

	// pendingReconciliations reports the reconciliation queue depth.
	pendingReconciliations func() int
}

// NewHandler wires a Handler.
func NewHandler(mutator Mutator, reader Reader, recommender Recommender, checks map[string]HealthChecker, pending func() int) *Handler {
	if checks == nil {
		checks = map[string]HealthChecker{}
	}
	if pending == nil {
		pending = func() int { return 0 }
	}
	return &Handler{
		mutator:                mutator,
		reader:                 reader,
		recommender:            recommender,
		checks:                 checks,
		pendingReconciliations: pending,
	}
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

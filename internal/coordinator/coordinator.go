// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package coordinator executes every domain mutation as an ordered dual
// write: document store first, graph store second.
//
// The document store is the system of record. Writing it first means a
// failure between the two legs leaves state that existence checks can
// see and reconciliation can repair; the reverse order would leave
// orphan edges invisible to the precondition gate, permitting duplicate
// re-creation.
//
// Precondition failures abort before any write and return a typed domain
// error. A failed graph leg after a successful document leg is never
// rolled back and never surfaced to the caller: it is logged, counted,
// and enqueued for the reconciliation drainer to replay.
package coordinator

import (
	"context"

	"github.com/tomtom215/harmonics/internal/logging"
	"github.com/tomtom215/harmonics/internal/metrics"
	"github.com/tomtom215/harmonics/internal/models"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// DocumentStore is the slice of the document port the coordinator writes
// through.
type DocumentStore interface {
	InsertUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, username string) error
	FindUserCascade(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, username string, set map[string]interface{}, unset []string) error

	PushFriend(ctx context.Context, username, friend string) error
	PullFriend(ctx context.Context, username, friend string) error
	PushRating(ctx context.Context, username string, rating models.UserRating) error
	PullRating(ctx context.Context, username, releaseID string) error
	PushFollow(ctx context.Context, username string, follow models.UserFollow) error
	PullFollow(ctx context.Context, username, artistID string) error

	FindRelease(ctx context.Context, releaseID string) (*models.ReleaseRef, error)
	FindArtistName(ctx context.Context, artistID string) (string, error)
	IncFollowers(ctx context.Context, artistID string, delta int64) error
	PushReleaseRating(ctx context.Context, releaseID string, rating models.ReleaseRating) error
	PullReleaseRating(ctx context.Context, releaseID, username string) error
}

// ExistenceResolver gates every mutation on document-store state.
type ExistenceResolver interface {
	UserExists(ctx context.Context, username string) (bool, error)
	ArtistExists(ctx context.Context, artistID string) (bool, error)
	ReleaseExists(ctx context.Context, releaseID string) (bool, error)
	RatingExists(ctx context.Context, username, releaseID string) (bool, error)
	FollowExists(ctx context.Context, username, artistID string) (bool, error)
	FriendshipExists(ctx context.Context, username, friend string) (bool, error)
}

// GraphStore applies the second leg of a dual write.
type GraphStore interface {
	Apply(ctx context.Context, m graph.Mutation) error
}

// Reconciler accepts graph mutations whose first application failed.
type Reconciler interface {
	Enqueue(m graph.Mutation)
}

// Coordinator owns the canonical write order and the partial-failure
// policy for all nine domain mutations.
type Coordinator struct {
	docs       DocumentStore
	exists     ExistenceResolver
	graph      GraphStore
	reconciler Reconciler
}

// New wires a Coordinator.
func New(docs DocumentStore, exists ExistenceResolver, g GraphStore, reconciler Reconciler) *Coordinator {
	return &Coordinator{
		docs:       docs,
		exists:     exists,
		graph:      g,
		reconciler: reconciler,
	}
}

// mirror applies the graph leg of a dual write whose document leg has
// already succeeded. Failure here is the partially-applied condition:
// the caller's request is still reported as successful, and the mutation
// goes to the reconciliation queue.
func (c *Coordinator) mirror(ctx context.Context, operation string, m graph.Mutation) {
	if err := c.graph.Apply(ctx, m); err != nil {
		logging.Ctx(ctx).Error().
			Err(err).
			Str("operation", operation).
			Str("mutation", m.Kind).
			Msg("graph mirror write failed, enqueued for reconciliation")
		metrics.DualWritePartialFailures.WithLabelValues(operation).Inc()
		metrics.DualWritesTotal.WithLabelValues(operation, "partial").Inc()
		c.reconciler.Enqueue(m)
		return
	}
	metrics.DualWritesTotal.WithLabelValues(operation, "applied").Inc()
}

func rejected(operation string) {
	metrics.DualWritesTotal.WithLabelValues(operation, "rejected").Inc()
}

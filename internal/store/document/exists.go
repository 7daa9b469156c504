// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package document

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/harmonics/internal/metrics"
)

// Kind identifies an entity or relationship the resolver can probe.
type Kind string

const (
	KindUser       Kind = "user"
	KindArtist     Kind = "artist"
	KindRelease    Kind = "release"
	KindRating     Kind = "rating"
	KindFollow     Kind = "follow"
	KindFriendship Kind = "friendship"
)

// Resolver answers existence questions against the document store, which
// is authoritative for existence. Every mutating operation consults it as
// a precondition gate before writing. Checks are side-effect free; the
// check-then-act race window is accepted per the consistency model.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Exists probes for the given kind. The keys are the identifying fields
// for that kind: one key for user/artist/release, two for rating
// (username, release id), follow (username, artist id) and friendship
// (username, username).
func (r *Resolver) Exists(ctx context.Context, kind Kind, keys ...string) (exists bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "exists_"+string(kind), start, err) }()

	coll := r.store.users
	if kind == KindArtist || kind == KindRelease {
		coll = r.store.artists
	}

	filter, err := existsFilter(kind, keys)
	if err != nil {
		return false, err
	}

	count, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("existence check %s%v: %w", kind, keys, err)
	}
	return count > 0, nil
}

// UserExists reports whether a user record exists for username.
func (r *Resolver) UserExists(ctx context.Context, username string) (bool, error) {
	return r.Exists(ctx, KindUser, username)
}

// ArtistExists reports whether an artist record exists for artistID.
func (r *Resolver) ArtistExists(ctx context.Context, artistID string) (bool, error) {
	return r.Exists(ctx, KindArtist, artistID)
}

// ReleaseExists reports whether any artist embeds a release with
// releaseID.
func (r *Resolver) ReleaseExists(ctx context.Context, releaseID string) (bool, error) {
	return r.Exists(ctx, KindRelease, releaseID)
}

// RatingExists reports whether username has rated releaseID.
func (r *Resolver) RatingExists(ctx context.Context, username, releaseID string) (bool, error) {
	return r.Exists(ctx, KindRating, username, releaseID)
}

// FollowExists reports whether username follows artistID.
func (r *Resolver) FollowExists(ctx context.Context, username, artistID string) (bool, error) {
	return r.Exists(ctx, KindFollow, username, artistID)
}

// FriendshipExists reports whether the two users are friends. Friendship
// is symmetric, so probing one side's friend list suffices.
func (r *Resolver) FriendshipExists(ctx context.Context, username, friend string) (bool, error) {
	return r.Exists(ctx, KindFriendship, username, friend)
}

// existsFilter builds the narrowest filter identifying the kind.
func existsFilter(kind Kind, keys []string) (bson.D, error) {
	arity := map[Kind]int{
		KindUser: 1, KindArtist: 1, KindRelease: 1,
		KindRating: 2, KindFollow: 2, KindFriendship: 2,
	}
	want, ok := arity[kind]
	if !ok {
		return nil, fmt.Errorf("unknown existence kind %q", kind)
	}
	if len(keys) != want {
		return nil, fmt.Errorf("existence kind %q takes %d keys, got %d", kind, want, len(keys))
	}

	switch kind {
	case KindUser:
		return bson.D{{Key: "username", Value: keys[0]}}, nil
	case KindArtist:
		return bson.D{{Key: "_id", Value: keys[0]}}, nil
	case KindRelease:
		return bson.D{{Key: "releases.id", Value: keys[0]}}, nil
	case KindRating:
		return bson.D{
			{Key: "username", Value: keys[0]},
			{Key: "ratings.id", Value: keys[1]},
		}, nil
	case KindFollow:
		return bson.D{
			{Key: "username", Value: keys[0]},
			{Key: "follows.id", Value: keys[1]},
		}, nil
	case KindFriendship:
		return bson.D{
			{Key: "username", Value: keys[0]},
			{Key: "friends", Value: keys[1]},
		}, nil
	default:
		return nil, fmt.Errorf("unknown existence kind %q", kind)
	}
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/harmonics/internal/metrics"
	"github.com/tomtom215/harmonics/internal/models"
)

// InsertUser inserts a new user record. The caller is responsible for the
// existence precondition; a concurrent duplicate insert surfaces as a
// driver error rather than a domain conflict.
func (s *Store) InsertUser(ctx context.Context, user models.User) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "insert_user", start, err) }()

	if _, err = s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user %q: %w", user.Username, err)
	}
	return nil
}

// DeleteUser removes the user record itself. Cascade cleanup of peer
// friend lists, release ratings and follower counters is driven by the
// coordinator using FindUserCascade.
func (s *Store) DeleteUser(ctx context.Context, username string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "delete_user", start, err) }()

	if _, err = s.users.DeleteOne(ctx, userFilter(username)); err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}
	return nil
}

// FindUserSummary returns the profile projection with relationship
// counts, or (nil, nil) if the user does not exist.
func (s *Store) FindUserSummary(ctx context.Context, username string) (summary *models.UserSummary, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_user_summary", start, err) }()

	cursor, err := s.users.Aggregate(ctx, userSummaryPipeline(username))
	if err != nil {
		return nil, fmt.Errorf("aggregate user summary %q: %w", username, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err = cursor.Err(); err != nil {
			return nil, fmt.Errorf("aggregate user summary %q: %w", username, err)
		}
		return nil, nil
	}

	var out models.UserSummary
	if err = cursor.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode user summary %q: %w", username, err)
	}
	return &out, nil
}

// FindUserLists returns the user's friends, ratings and follows lists, or
// (nil, nil) if the user does not exist.
func (s *Store) FindUserLists(ctx context.Context, username string) (user *models.User, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_user_lists", start, err) }()

	opts := options.FindOne().SetProjection(bson.D{
		{Key: "username", Value: 1},
		{Key: "friends", Value: 1},
		{Key: "ratings", Value: 1},
		{Key: "follows", Value: 1},
	})

	var out models.User
	err = s.users.FindOne(ctx, userFilter(username), opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user lists %q: %w", username, err)
	}
	return &out, nil
}

// FindUserCascade returns the relationship lists a delete_account cascade
// has to unwind: friend usernames, rated release IDs and followed artist
// IDs. Returns (nil, nil) if the user does not exist.
func (s *Store) FindUserCascade(ctx context.Context, username string) (user *models.User, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_user_cascade", start, err) }()

	opts := options.FindOne().SetProjection(bson.D{
		{Key: "friends", Value: 1},
		{Key: "ratings.id", Value: 1},
		{Key: "follows.id", Value: 1},
	})

	var out models.User
	err = s.users.FindOne(ctx, userFilter(username), opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user cascade %q: %w", username, err)
	}
	return &out, nil
}

// UpdateProfile applies the recognized profile fields: set maps field
// names to new values, unset lists fields to clear. The caller validates
// that at least one field is present.
func (s *Store) UpdateProfile(ctx context.Context, username string, set map[string]interface{}, unset []string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "update_profile", start, err) }()

	update := bson.D{}
	if len(set) > 0 {
		fields := bson.D{}
		for k, v := range set {
			fields = append(fields, bson.E{Key: k, Value: v})
		}
		update = append(update, bson.E{Key: "$set", Value: fields})
	}
	if len(unset) > 0 {
		fields := bson.D{}
		for _, k := range unset {
			fields = append(fields, bson.E{Key: k, Value: ""})
		}
		update = append(update, bson.E{Key: "$unset", Value: fields})
	}

	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("update profile %q: %w", username, err)
	}
	return nil
}

// PushFriend appends friend to username's friend list.
func (s *Store) PushFriend(ctx context.Context, username, friend string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "push_friend", start, err) }()

	update := bson.D{{Key: "$push", Value: bson.D{{Key: "friends", Value: friend}}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("push friend %q -> %q: %w", friend, username, err)
	}
	return nil
}

// PullFriend removes friend from username's friend list. A no-op if the
// entry is already absent, which makes cascade retries safe.
func (s *Store) PullFriend(ctx context.Context, username, friend string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "pull_friend", start, err) }()

	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "friends", Value: friend}}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("pull friend %q <- %q: %w", friend, username, err)
	}
	return nil
}

// PushRating appends a rating entry to the user's rating list.
func (s *Store) PushRating(ctx context.Context, username string, rating models.UserRating) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "push_rating", start, err) }()

	update := bson.D{{Key: "$push", Value: bson.D{{Key: "ratings", Value: rating}}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("push rating %q for user %q: %w", rating.ID, username, err)
	}
	return nil
}

// PullRating removes the rating entry for releaseID from the user's
// rating list.
func (s *Store) PullRating(ctx context.Context, username, releaseID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "pull_rating", start, err) }()

	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "ratings", Value: bson.D{{Key: "id", Value: releaseID}}},
	}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("pull rating %q for user %q: %w", releaseID, username, err)
	}
	return nil
}

// PushFollow appends a follow entry to the user's follow list.
func (s *Store) PushFollow(ctx context.Context, username string, follow models.UserFollow) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "push_follow", start, err) }()

	update := bson.D{{Key: "$push", Value: bson.D{{Key: "follows", Value: follow}}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("push follow %q for user %q: %w", follow.ID, username, err)
	}
	return nil
}

// PullFollow removes the follow entry for artistID from the user's follow
// list.
func (s *Store) PullFollow(ctx context.Context, username, artistID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "pull_follow", start, err) }()

	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "follows", Value: bson.D{{Key: "id", Value: artistID}}},
	}}}
	if _, err = s.users.UpdateOne(ctx, userFilter(username), update); err != nil {
		return fmt.Errorf("pull follow %q for user %q: %w", artistID, username, err)
	}
	return nil
}

// StrongRatings returns the user's ratings with value strictly above
// threshold, in insertion order. Returns an empty slice for a user with
// no qualifying ratings and (nil, nil) for a missing user.
func (s *Store) StrongRatings(ctx context.Context, username string, threshold float64) (ratings []models.UserRating, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "strong_ratings", start, err) }()

	cursor, err := s.users.Aggregate(ctx, strongRatingsPipeline(username, threshold))
	if err != nil {
		return nil, fmt.Errorf("aggregate strong ratings %q: %w", username, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err = cursor.Err(); err != nil {
			return nil, fmt.Errorf("aggregate strong ratings %q: %w", username, err)
		}
		return nil, nil
	}

	var row struct {
		Ratings []models.UserRating `bson:"ratings"`
	}
	if err = cursor.Decode(&row); err != nil {
		return nil, fmt.Errorf("decode strong ratings %q: %w", username, err)
	}
	if row.Ratings == nil {
		row.Ratings = []models.UserRating{}
	}
	return row.Ratings, nil
}

// RatedReleaseIDs returns the IDs of every release the user has rated, in
// insertion order.
func (s *Store) RatedReleaseIDs(ctx context.Context, username string) (ids []string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "rated_release_ids", start, err) }()

	opts := options.FindOne().SetProjection(bson.D{{Key: "ratings.id", Value: 1}})

	var out models.User
	err = s.users.FindOne(ctx, userFilter(username), opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rated release ids %q: %w", username, err)
	}

	ids = make([]string, 0, len(out.Ratings))
	for _, r := range out.Ratings {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// FriendStrongRatings returns, for each listed friend, that friend's
// ratings with value strictly above threshold in insertion order. Friends
// without qualifying ratings are omitted from the result.
func (s *Store) FriendStrongRatings(ctx context.Context, friends []string, threshold float64) (byFriend map[string][]models.UserRating, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "friend_strong_ratings", start, err) }()

	if len(friends) == 0 {
		return map[string][]models.UserRating{}, nil
	}

	filter := bson.D{{Key: "username", Value: bson.D{{Key: "$in", Value: friends}}}}
	opts := options.Find().SetProjection(bson.D{
		{Key: "username", Value: 1},
		{Key: "ratings", Value: 1},
	})

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find friend ratings: %w", err)
	}
	defer cursor.Close(ctx)

	byFriend = make(map[string][]models.UserRating)
	for cursor.Next(ctx) {
		var friend models.User
		if err = cursor.Decode(&friend); err != nil {
			return nil, fmt.Errorf("decode friend ratings: %w", err)
		}
		for _, r := range friend.Ratings {
			if r.Rating > threshold {
				byFriend[friend.Username] = append(byFriend[friend.Username], r)
			}
		}
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend ratings: %w", err)
	}
	return byFriend, nil
}

func userFilter(username string) bson.D {
	return bson.D{{Key: "username", Value: username}}
}

// userSummaryPipeline projects the profile fields plus list sizes for a
// single user.
func userSummaryPipeline(username string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: userFilter(username)}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "username", Value: 1},
			{Key: "name", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$name", nil}}}},
			{Key: "bio", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$bio", nil}}}},
			{Key: "qt_friends", Value: bson.D{{Key: "$size", Value: "$friends"}}},
			{Key: "qt_ratings", Value: bson.D{{Key: "$size", Value: "$ratings"}}},
			{Key: "qt_follows", Value: bson.D{{Key: "$size", Value: "$follows"}}},
		}}},
	}
}

// strongRatingsPipeline filters a user's embedded ratings to those
// strictly above threshold, preserving array order.
func strongRatingsPipeline(username string, threshold float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: userFilter(username)}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "ratings", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: "$ratings"},
				{Key: "as", Value: "r"},
				{Key: "cond", Value: bson.D{{Key: "$gt", Value: bson.A{"$$r.rating", threshold}}}},
			}}}},
		}}},
	}
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package coordinator

import (
	"context"
	"fmt"

	"github.com/tomtom215/harmonics/internal/apperr"
	"github.com/tomtom215/harmonics/internal/auth"
	"github.com/tomtom215/harmonics/internal/models"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// RegisterParams carries a registration request. Name and Bio are
// optional; empty values are stored as absent fields.
type RegisterParams struct {
	Username string
	Password string
	Name     string
	Bio      string
}

// ProfileUpdate carries a profile patch. Nil fields are untouched. An
// empty Name or Bio clears the field; Password must be non-empty when
// present.
type ProfileUpdate struct {
	Password *string
	Name     *string
	Bio      *string
}

// Register creates a user in both stores.
func (c *Coordinator) Register(ctx context.Context, params RegisterParams) error {
	const op = "register"

	exists, err := c.exists.UserExists(ctx, params.Username)
	if err != nil {
		return fmt.Errorf("register precondition: %w", err)
	}
	if exists {
		rejected(op)
		return apperr.UserAlreadyExists(params.Username)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	user := models.User{
		Username: params.Username,
		Password: hash,
		Name:     params.Name,
		Bio:      params.Bio,
		Friends:  []string{},
		Ratings:  []models.UserRating{},
		Follows:  []models.UserFollow{},
	}
	if err := c.docs.InsertUser(ctx, user); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.CreateUserNode(params.Username))
	return nil
}

// DeleteAccount removes a user and cascades: the user disappears from
// every peer's friend list, their ratings leave every affected release,
// every followed artist's counter is decremented, and the graph node is
// detached.
func (c *Coordinator) DeleteAccount(ctx context.Context, username string) error {
	const op = "delete_account"

	user, err := c.docs.FindUserCascade(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	// Pull and decrement operations are no-ops on absent entries, so a
	// retried cascade after a partial failure is safe.
	for _, friend := range user.Friends {
		if err := c.docs.PullFriend(ctx, friend, username); err != nil {
			return err
		}
	}
	for _, rating := range user.Ratings {
		if err := c.docs.PullReleaseRating(ctx, rating.ID, username); err != nil {
			return err
		}
	}
	for _, follow := range user.Follows {
		if err := c.docs.IncFollowers(ctx, follow.ID, -1); err != nil {
			return err
		}
	}
	if err := c.docs.DeleteUser(ctx, username); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.DeleteUserNode(username))
	return nil
}

// UpdateProfile patches password, name and bio. There is no graph leg:
// profile fields live only in the document store.
func (c *Coordinator) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) error {
	const op = "update_profile"

	exists, err := c.exists.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("update_profile precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	set := map[string]interface{}{}
	var unset []string

	if update.Password != nil {
		if *update.Password == "" {
			rejected(op)
			return apperr.PropertyNotProvided("password")
		}
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return fmt.Errorf("update_profile: %w", err)
		}
		set["password"] = hash
	}
	if update.Name != nil {
		if *update.Name == "" {
			unset = append(unset, "name")
		} else {
			set["name"] = *update.Name
		}
	}
	if update.Bio != nil {
		if *update.Bio == "" {
			unset = append(unset, "bio")
		} else {
			set["bio"] = *update.Bio
		}
	}

	if len(set) == 0 && len(unset) == 0 {
		rejected(op)
		return apperr.NoValidFields()
	}

	return c.docs.UpdateProfile(ctx, username, set, unset)
}

// Rate records a rating in the user's list, the release's embedded list
// and the graph. Duplicate ratings are rejected outright: the first
// written value wins in every projection.
func (c *Coordinator) Rate(ctx context.Context, username, releaseID string, rating float64) error {
	const op = "rate"

	exists, err := c.exists.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("rate precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	release, err := c.docs.FindRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release == nil {
		rejected(op)
		return apperr.ReleaseNotFound(releaseID)
	}

	rated, err := c.exists.RatingExists(ctx, username, releaseID)
	if err != nil {
		return fmt.Errorf("rate precondition: %w", err)
	}
	if rated {
		rejected(op)
		return apperr.RatingAlreadyExists(username, releaseID)
	}

	userRating := models.UserRating{
		ID:     releaseID,
		Artist: release.Artist,
		Name:   release.Name,
		Rating: rating,
	}
	if err := c.docs.PushRating(ctx, username, userRating); err != nil {
		return err
	}
	releaseRating := models.ReleaseRating{Username: username, Rating: rating}
	if err := c.docs.PushReleaseRating(ctx, releaseID, releaseRating); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.CreateRatedEdge(username, releaseID, rating))
	return nil
}

// Unrate removes a rating from both document projections and the graph.
func (c *Coordinator) Unrate(ctx context.Context, username, releaseID string) error {
	const op = "unrate"

	exists, err := c.exists.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("unrate precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	exists, err = c.exists.ReleaseExists(ctx, releaseID)
	if err != nil {
		return fmt.Errorf("unrate precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.ReleaseNotFound(releaseID)
	}

	exists, err = c.exists.RatingExists(ctx, username, releaseID)
	if err != nil {
		return fmt.Errorf("unrate precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.RatingNotFound(username, releaseID)
	}

	if err := c.docs.PullRating(ctx, username, releaseID); err != nil {
		return err
	}
	if err := c.docs.PullReleaseRating(ctx, releaseID, username); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.DeleteRatedEdge(username, releaseID))
	return nil
}

// Follow adds a follow entry and bumps the artist's follower counter.
func (c *Coordinator) Follow(ctx context.Context, username, artistID string) error {
	const op = "follow"

	exists, err := c.exists.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("follow precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	artistName, err := c.docs.FindArtistName(ctx, artistID)
	if err != nil {
		return err
	}
	if artistName == "" {
		rejected(op)
		return apperr.ArtistNotFound(artistID)
	}

	following, err := c.exists.FollowExists(ctx, username, artistID)
	if err != nil {
		return fmt.Errorf("follow precondition: %w", err)
	}
	if following {
		rejected(op)
		return apperr.FollowAlreadyExists(username, artistID)
	}

	follow := models.UserFollow{ID: artistID, Name: artistName}
	if err := c.docs.PushFollow(ctx, username, follow); err != nil {
		return err
	}
	if err := c.docs.IncFollowers(ctx, artistID, 1); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.CreateFollowsEdge(username, artistID))
	return nil
}

// Unfollow removes the follow entry and decrements the counter.
func (c *Coordinator) Unfollow(ctx context.Context, username, artistID string) error {
	const op = "unfollow"

	exists, err := c.exists.UserExists(ctx, username)
	if err != nil {
		return fmt.Errorf("unfollow precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.UserNotFound(username)
	}

	exists, err = c.exists.ArtistExists(ctx, artistID)
	if err != nil {
		return fmt.Errorf("unfollow precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.ArtistNotFound(artistID)
	}

	exists, err = c.exists.FollowExists(ctx, username, artistID)
	if err != nil {
		return fmt.Errorf("unfollow precondition: %w", err)
	}
	if !exists {
		rejected(op)
		return apperr.FollowNotFound(username, artistID)
	}

	if err := c.docs.PullFollow(ctx, username, artistID); err != nil {
		return err
	}
	if err := c.docs.IncFollowers(ctx, artistID, -1); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.DeleteFollowsEdge(username, artistID))
	return nil
}

// Befriend records a symmetric friendship: an entry in each user's
// friend list and both directed graph edges.
func (c *Coordinator) Befriend(ctx context.Context, username, friend string) error {
	const op = "befriend"

	for _, u := range []string{username, friend} {
		exists, err := c.exists.UserExists(ctx, u)
		if err != nil {
			return fmt.Errorf("befriend precondition: %w", err)
		}
		if !exists {
			rejected(op)
			return apperr.UserNotFound(u)
		}
	}

	friends, err := c.exists.FriendshipExists(ctx, username, friend)
	if err != nil {
		return fmt.Errorf("befriend precondition: %w", err)
	}
	if friends {
		rejected(op)
		return apperr.FriendshipAlreadyExists(username, friend)
	}

	if err := c.docs.PushFriend(ctx, username, friend); err != nil {
		return err
	}
	if err := c.docs.PushFriend(ctx, friend, username); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.CreateFriendship(username, friend))
	return nil
}

// Unfriend removes both friend-list entries and both directed edges.
func (c *Coordinator) Unfriend(ctx context.Context, username, friend string) error {
	const op = "unfriend"

	for _, u := range []string{username, friend} {
		exists, err := c.exists.UserExists(ctx, u)
		if err != nil {
			return fmt.Errorf("unfriend precondition: %w", err)
		}
		if !exists {
			rejected(op)
			return apperr.UserNotFound(u)
		}
	}

	friends, err := c.exists.FriendshipExists(ctx, username, friend)
	if err != nil {
		return fmt.Errorf("unfriend precondition: %w", err)
	}
	if !friends {
		rejected(op)
		return apperr.FriendshipNotFound(username, friend)
	}

	if err := c.docs.PullFriend(ctx, username, friend); err != nil {
		return err
	}
	if err := c.docs.PullFriend(ctx, friend, username); err != nil {
		return err
	}

	c.mirror(ctx, op, graph.DeleteFriendship(username, friend))
	return nil
}

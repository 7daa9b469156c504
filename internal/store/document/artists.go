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

// FindArtist returns the full artist record, or (nil, nil) if absent.
func (s *Store) FindArtist(ctx context.Context, artistID string) (artist *models.Artist, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_artist", start, err) }()

	var out models.Artist
	err = s.artists.FindOne(ctx, artistFilter(artistID)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find artist %q: %w", artistID, err)
	}
	return &out, nil
}

// FindArtistName returns just the artist's name, or ("", nil) if absent.
// Used when denormalizing the name into a user's follow entry.
func (s *Store) FindArtistName(ctx context.Context, artistID string) (name string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_artist_name", start, err) }()

	opts := options.FindOne().SetProjection(bson.D{{Key: "name", Value: 1}})

	var out models.Artist
	err = s.artists.FindOne(ctx, artistFilter(artistID), opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find artist name %q: %w", artistID, err)
	}
	return out.Name, nil
}

// FindArtistsByGenre returns every artist tagged with genre, without the
// embedded release rating lists.
func (s *Store) FindArtistsByGenre(ctx context.Context, genre string) (artists []models.Artist, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_artists_by_genre", start, err) }()

	filter := bson.D{{Key: "genres", Value: genre}}
	opts := options.Find().SetProjection(bson.D{{Key: "releases.ratings", Value: 0}})

	cursor, err := s.artists.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find artists by genre %q: %w", genre, err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &artists); err != nil {
		return nil, fmt.Errorf("decode artists by genre %q: %w", genre, err)
	}
	return artists, nil
}

// FindRelease resolves a release ID to the release name and its owning
// artist's name. Returns (nil, nil) if no artist embeds the release.
func (s *Store) FindRelease(ctx context.Context, releaseID string) (ref *models.ReleaseRef, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "find_release", start, err) }()

	cursor, err := s.artists.Aggregate(ctx, releaseRefPipeline(releaseID))
	if err != nil {
		return nil, fmt.Errorf("aggregate release %q: %w", releaseID, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err = cursor.Err(); err != nil {
			return nil, fmt.Errorf("aggregate release %q: %w", releaseID, err)
		}
		return nil, nil
	}

	var out models.ReleaseRef
	if err = cursor.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode release %q: %w", releaseID, err)
	}
	return &out, nil
}

// IncFollowers adjusts the artist's denormalized follower counter by
// delta (+1 on follow, -1 on unfollow and per-follow during a
// delete_account cascade).
func (s *Store) IncFollowers(ctx context.Context, artistID string, delta int64) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "inc_followers", start, err) }()

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "qt_followers", Value: delta}}}}
	if _, err = s.artists.UpdateOne(ctx, artistFilter(artistID), update); err != nil {
		return fmt.Errorf("inc followers %q by %d: %w", artistID, delta, err)
	}
	return nil
}

// PushReleaseRating appends a rating entry to the embedded release
// matched by releaseID.
func (s *Store) PushReleaseRating(ctx context.Context, releaseID string, rating models.ReleaseRating) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "push_release_rating", start, err) }()

	filter := bson.D{{Key: "releases.id", Value: releaseID}}
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: "releases.$.ratings", Value: rating},
	}}}
	if _, err = s.artists.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("push release rating %q by %q: %w", releaseID, rating.Username, err)
	}
	return nil
}

// PullReleaseRating removes username's rating entry from the embedded
// release matched by releaseID. A no-op if already absent.
func (s *Store) PullReleaseRating(ctx context.Context, releaseID, username string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "pull_release_rating", start, err) }()

	filter := bson.D{{Key: "releases.id", Value: releaseID}}
	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "releases.$.ratings", Value: bson.D{{Key: "username", Value: username}}},
	}}}
	if _, err = s.artists.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("pull release rating %q by %q: %w", releaseID, username, err)
	}
	return nil
}

// GenresForReleases returns the distinct genres of the artists owning the
// given releases, in first-seen order.
func (s *Store) GenresForReleases(ctx context.Context, releaseIDs []string) (genres []string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "genres_for_releases", start, err) }()

	if len(releaseIDs) == 0 {
		return nil, nil
	}

	filter := bson.D{{Key: "releases.id", Value: bson.D{{Key: "$in", Value: releaseIDs}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "genres", Value: 1}})

	cursor, err := s.artists.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find genres for releases: %w", err)
	}
	defer cursor.Close(ctx)

	seen := make(map[string]bool)
	for cursor.Next(ctx) {
		var artist models.Artist
		if err = cursor.Decode(&artist); err != nil {
			return nil, fmt.Errorf("decode genres for releases: %w", err)
		}
		for _, g := range artist.Genres {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres for releases: %w", err)
	}
	return genres, nil
}

// StrongRatersByArtist returns, for each listed artist, the distinct
// usernames holding a rating strictly above threshold on any of the
// artist's releases. Artists without strong raters are omitted.
func (s *Store) StrongRatersByArtist(ctx context.Context, artistIDs []string, threshold float64) (raters map[string][]string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "strong_raters_by_artist", start, err) }()

	if len(artistIDs) == 0 {
		return map[string][]string{}, nil
	}

	cursor, err := s.artists.Aggregate(ctx, strongRatersPipeline(artistIDs, threshold))
	if err != nil {
		return nil, fmt.Errorf("aggregate strong raters: %w", err)
	}
	defer cursor.Close(ctx)

	raters = make(map[string][]string)
	for cursor.Next(ctx) {
		var row struct {
			ID     string   `bson:"_id"`
			Raters []string `bson:"raters"`
		}
		if err = cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode strong raters: %w", err)
		}
		raters[row.ID] = row.Raters
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate strong raters: %w", err)
	}
	return raters, nil
}

// ReleaseIDsByGenre returns the IDs of every release owned by an artist
// tagged with genre.
func (s *Store) ReleaseIDsByGenre(ctx context.Context, genre string) (ids []string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("document", "release_ids_by_genre", start, err) }()

	filter := bson.D{{Key: "genres", Value: genre}}
	opts := options.Find().SetProjection(bson.D{{Key: "releases.id", Value: 1}})

	cursor, err := s.artists.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find releases by genre %q: %w", genre, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var artist models.Artist
		if err = cursor.Decode(&artist); err != nil {
			return nil, fmt.Errorf("decode releases by genre %q: %w", genre, err)
		}
		for _, rel := range artist.Releases {
			ids = append(ids, rel.ID)
		}
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate releases by genre %q: %w", genre, err)
	}
	return ids, nil
}

func artistFilter(artistID string) bson.D {
	return bson.D{{Key: "_id", Value: artistID}}
}

// releaseRefPipeline unwinds the embedded releases and projects the
// matched release with its artist's name.
func releaseRefPipeline(releaseID string) mongo.Pipeline {
	match := bson.D{{Key: "releases.id", Value: releaseID}}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$releases"}},
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "id", Value: "$releases.id"},
			{Key: "artist", Value: "$name"},
			{Key: "name", Value: "$releases.name"},
		}}},
	}
}

// strongRatersPipeline groups distinct strong raters per artist.
func strongRatersPipeline(artistIDs []string, threshold float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$in", Value: artistIDs}}},
		}}},
		{{Key: "$unwind", Value: "$releases"}},
		{{Key: "$unwind", Value: "$releases.ratings"}},
		{{Key: "$match", Value: bson.D{
			{Key: "releases.ratings.rating", Value: bson.D{{Key: "$gt", Value: threshold}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "raters", Value: bson.D{{Key: "$addToSet", Value: "$releases.ratings.username"}}},
		}}},
	}
}

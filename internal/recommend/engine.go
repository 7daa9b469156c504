// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package recommend computes artist and release recommendations by
// combining graph traversal with document-store aggregation.
//
// Candidate discovery runs against the graph store (genre overlap,
// friendship hops); scoring runs against the document store (strong
// rating counts). Both reads tolerate entities missing from either
// store, since the two are only eventually synchronized: a missing node
// or record narrows the result, it never errors.
//
// This package depends on its providers through interfaces so the store
// packages stay swappable and the algorithms testable without either
// database.
package recommend

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/harmonics/internal/apperr"
	"github.com/tomtom215/harmonics/internal/cache"
	"github.com/tomtom215/harmonics/internal/config"
	"github.com/tomtom215/harmonics/internal/logging"
	"github.com/tomtom215/harmonics/internal/metrics"
	"github.com/tomtom215/harmonics/internal/models"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// Ranking methods accepted by RecommendArtists.
const (
	MethodPopularity = "popularity"
	MethodSocial     = "social"
)

// DocumentProvider is the slice of the document port the engine reads.
type DocumentProvider interface {
	StrongRatings(ctx context.Context, username string, threshold float64) ([]models.UserRating, error)
	RatedReleaseIDs(ctx context.Context, username string) ([]string, error)
	FriendStrongRatings(ctx context.Context, friends []string, threshold float64) (map[string][]models.UserRating, error)
	GenresForReleases(ctx context.Context, releaseIDs []string) ([]string, error)
	StrongRatersByArtist(ctx context.Context, artistIDs []string, threshold float64) (map[string][]string, error)
	ReleaseIDsByGenre(ctx context.Context, genre string) ([]string, error)
}

// GraphProvider is the slice of the graph port the engine traverses.
type GraphProvider interface {
	Friends(ctx context.Context, username string) ([]string, error)
	CandidateArtists(ctx context.Context, username string, genres []string, strongThreshold float64) ([]graph.Candidate, error)
}

// Engine computes recommendations. Safe for concurrent use; responses
// are memoized in a TTL cache.
type Engine struct {
	docs  DocumentProvider
	graph GraphProvider
	cfg   config.RecommendConfig
	cache *cache.Cache
	log   zerolog.Logger
}

// New creates an Engine.
func New(docs DocumentProvider, graphProvider GraphProvider, cfg config.RecommendConfig) *Engine {
	return &Engine{
		docs:  docs,
		graph: graphProvider,
		cfg:   cfg,
		cache: cache.New(cfg.CacheTTL),
		log:   logging.With().Str("component", "recommend").Logger(),
	}
}

// RecommendArtists returns ranked artist recommendations for username.
//
// The pipeline: the user's strong ratings seed a genre profile; the
// graph supplies artists sharing those genres that the user neither
// follows nor has rated strongly; artists are ranked by their count of
// distinct strong raters. The social method weights raters who are
// friends of the user; popularity counts everyone equally.
func (e *Engine) RecommendArtists(ctx context.Context, username, method string) ([]models.ArtistRec, error) {
	if method != MethodPopularity && method != MethodSocial {
		metrics.RecommendRequestsTotal.WithLabelValues("artists", "rejected").Inc()
		return nil, apperr.InvalidRecMethod(method)
	}

	key := cache.GenerateKey("artists", struct {
		Username string
		Method   string
	}{username, method})
	if cached, ok := e.cache.Get(key); ok {
		metrics.RecommendCacheHits.Inc()
		return cached.([]models.ArtistRec), nil
	}
	metrics.RecommendCacheMisses.Inc()

	recs, err := e.computeArtists(ctx, username, method)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("artists", "error").Inc()
		return nil, err
	}

	e.cache.Set(key, recs)
	metrics.RecommendRequestsTotal.WithLabelValues("artists", "ok").Inc()
	return recs, nil
}

func (e *Engine) computeArtists(ctx context.Context, username, method string) ([]models.ArtistRec, error) {
	threshold := e.cfg.StrongRatingThreshold

	strong, err := e.docs.StrongRatings(ctx, username, threshold)
	if err != nil {
		return nil, err
	}
	if len(strong) == 0 {
		return nil, apperr.NoRatingsFound(username)
	}

	releaseIDs := make([]string, 0, len(strong))
	for _, r := range strong {
		releaseIDs = append(releaseIDs, r.ID)
	}
	genres, err := e.docs.GenresForReleases(ctx, releaseIDs)
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return nil, apperr.NoGenreDataFound(username)
	}

	candidates, err := e.graph.CandidateArtists(ctx, username, genres, threshold)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperr.ArtistRecsNotFound(username)
	}

	candidateIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		candidateIDs = append(candidateIDs, c.ID)
	}
	raters, err := e.docs.StrongRatersByArtist(ctx, candidateIDs, threshold)
	if err != nil {
		return nil, err
	}

	friendSet := map[string]bool{}
	if method == MethodSocial {
		friends, err := e.graph.Friends(ctx, username)
		if err != nil {
			return nil, err
		}
		for _, f := range friends {
			friendSet[f] = true
		}
	}

	recs := make([]models.ArtistRec, 0, len(candidates))
	for _, c := range candidates {
		score := 0.0
		for _, rater := range raters[c.ID] {
			if friendSet[rater] {
				score += e.cfg.FriendWeight
			} else {
				score++
			}
		}
		recs = append(recs, models.ArtistRec{ID: c.ID, Name: c.Name, Score: score})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Name < recs[j].Name
	})
	if len(recs) > e.cfg.MaxResults {
		recs = recs[:e.cfg.MaxResults]
	}

	e.log.Debug().
		Str("username", username).
		Str("method", method).
		Int("genres", len(genres)).
		Int("candidates", len(candidates)).
		Int("results", len(recs)).
		Msg("computed artist recommendations")
	return recs, nil
}

// FriendPicks returns releases strongly rated by the user's friends
// within a genre, ranked by rating value with the most recently rated
// first among ties, excluding releases the user already rated.
func (e *Engine) FriendPicks(ctx context.Context, username, genre string) ([]models.ReleasePick, error) {
	key := cache.GenerateKey("friend_picks", struct {
		Username string
		Genre    string
	}{username, genre})
	if cached, ok := e.cache.Get(key); ok {
		metrics.RecommendCacheHits.Inc()
		return cached.([]models.ReleasePick), nil
	}
	metrics.RecommendCacheMisses.Inc()

	picks, err := e.computeFriendPicks(ctx, username, genre)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("friend_picks", "error").Inc()
		return nil, err
	}

	e.cache.Set(key, picks)
	metrics.RecommendRequestsTotal.WithLabelValues("friend_picks", "ok").Inc()
	return picks, nil
}

func (e *Engine) computeFriendPicks(ctx context.Context, username, genre string) ([]models.ReleasePick, error) {
	friends, err := e.graph.Friends(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return nil, apperr.NoFriendsRatingsFound()
	}

	byFriend, err := e.docs.FriendStrongRatings(ctx, friends, e.cfg.StrongRatingThreshold)
	if err != nil {
		return nil, err
	}
	if len(byFriend) == 0 {
		return nil, apperr.NoFriendsRatingsFound()
	}

	genreReleases, err := e.docs.ReleaseIDsByGenre(ctx, genre)
	if err != nil {
		return nil, err
	}
	inGenre := make(map[string]bool, len(genreReleases))
	for _, id := range genreReleases {
		inGenre[id] = true
	}

	ownIDs, err := e.docs.RatedReleaseIDs(ctx, username)
	if err != nil {
		return nil, err
	}
	alreadyRated := make(map[string]bool, len(ownIDs))
	for _, id := range ownIDs {
		alreadyRated[id] = true
	}

	// A rating's position in its friend's list is its recency: the list
	// is append-ordered, so a higher index means rated more recently.
	type pick struct {
		models.ReleasePick
		recency int
	}
	var picks []pick
	for _, friend := range friends {
		for i, r := range byFriend[friend] {
			if !inGenre[r.ID] || alreadyRated[r.ID] {
				continue
			}
			picks = append(picks, pick{
				ReleasePick: models.ReleasePick{
					ID:      r.ID,
					Artist:  r.Artist,
					Name:    r.Name,
					Rating:  r.Rating,
					RatedBy: friend,
				},
				recency: i,
			})
		}
	}
	if len(picks) == 0 {
		return nil, apperr.NoFriendRecsFound(username, genre)
	}

	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].Rating != picks[j].Rating {
			return picks[i].Rating > picks[j].Rating
		}
		return picks[i].recency > picks[j].recency
	})

	// Keep the best-ranked entry per release when several friends rated
	// the same one.
	seen := make(map[string]bool, len(picks))
	out := make([]models.ReleasePick, 0, len(picks))
	for _, p := range picks {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p.ReleasePick)
		if len(out) == e.cfg.MaxResults {
			break
		}
	}

	e.log.Debug().
		Str("username", username).
		Str("genre", genre).
		Int("friends", len(friends)).
		Int("results", len(out)).
		Msg("computed friend picks")
	return out, nil
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/harmonics/internal/apperr"
	"github.com/tomtom215/harmonics/internal/config"
	"github.com/tomtom215/harmonics/internal/models"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

type fakeDocs struct {
	strong        map[string][]models.UserRating
	genres        map[string][]string
	raters        map[string][]string
	friendRatings map[string][]models.UserRating
	genreReleases map[string][]string
	ownIDs        map[string][]string
	strongCalls   int
}

func (f *fakeDocs) StrongRatings(_ context.Context, username string, _ float64) ([]models.UserRating, error) {
	f.strongCalls++
	return f.strong[username], nil
}

func (f *fakeDocs) RatedReleaseIDs(_ context.Context, username string) ([]string, error) {
	return f.ownIDs[username], nil
}

func (f *fakeDocs) FriendStrongRatings(_ context.Context, friends []string, _ float64) (map[string][]models.UserRating, error) {
	out := map[string][]models.UserRating{}
	for _, friend := range friends {
		if ratings := f.friendRatings[friend]; len(ratings) > 0 {
			out[friend] = ratings
		}
	}
	return out, nil
}

func (f *fakeDocs) GenresForReleases(_ context.Context, releaseIDs []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, id := range releaseIDs {
		for _, g := range f.genres[id] {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f *fakeDocs) StrongRatersByArtist(_ context.Context, artistIDs []string, _ float64) (map[string][]string, error) {
	out := map[string][]string{}
	for _, id := range artistIDs {
		if raters := f.raters[id]; len(raters) > 0 {
			out[id] = raters
		}
	}
	return out, nil
}

func (f *fakeDocs) ReleaseIDsByGenre(_ context.Context, genre string) ([]string, error) {
	return f.genreReleases[genre], nil
}

type fakeGraph struct {
	friends    map[string][]string
	candidates map[string][]graph.Candidate
	gotGenres  []string
}

func (f *fakeGraph) Friends(_ context.Context, username string) ([]string, error) {
	return f.friends[username], nil
}

func (f *fakeGraph) CandidateArtists(_ context.Context, username string, genres []string, _ float64) ([]graph.Candidate, error) {
	f.gotGenres = genres
	var out []graph.Candidate
	for _, g := range genres {
		out = append(out, f.candidates[g]...)
	}
	return out, nil
}

func testEngine(docs *fakeDocs, g *fakeGraph) *Engine {
	return New(docs, g, config.RecommendConfig{
		StrongRatingThreshold: 6,
		MaxResults:            10,
		FriendWeight:          2.0,
		CacheTTL:              time.Minute,
	})
}

// jazzFixture models a user whose strong ratings are all jazz releases.
func jazzFixture() (*fakeDocs, *fakeGraph) {
	docs := &fakeDocs{
		strong: map[string][]models.UserRating{
			"alice": {
				{ID: "rel_1", Artist: "Mingus", Name: "Ah Um", Rating: 9},
				{ID: "rel_2", Artist: "Coltrane", Name: "Giant Steps", Rating: 8},
			},
		},
		genres: map[string][]string{
			"rel_1": {"jazz"},
			"rel_2": {"jazz"},
		},
		raters: map[string][]string{
			"art_monk":   {"bob", "carol", "dave"},
			"art_dolphy": {"bob"},
		},
	}
	g := &fakeGraph{
		friends: map[string][]string{},
		candidates: map[string][]graph.Candidate{
			"jazz": {
				{ID: "art_monk", Name: "Monk"},
				{ID: "art_dolphy", Name: "Dolphy"},
				{ID: "art_ayler", Name: "Ayler"},
			},
		},
	}
	return docs, g
}

func TestRecommendArtists_JazzOnly(t *testing.T) {
	docs, g := jazzFixture()
	e := testEngine(docs, g)

	recs, err := e.RecommendArtists(context.Background(), "alice", MethodPopularity)
	if err != nil {
		t.Fatalf("RecommendArtists failed: %v", err)
	}

	if len(g.gotGenres) != 1 || g.gotGenres[0] != "jazz" {
		t.Errorf("traversal genres = %v, want [jazz]", g.gotGenres)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recs, want 3", len(recs))
	}
	if recs[0].ID != "art_monk" || recs[0].Score != 3 {
		t.Errorf("top rec = %+v, want art_monk with score 3", recs[0])
	}
	if recs[1].ID != "art_dolphy" {
		t.Errorf("second rec = %+v, want art_dolphy", recs[1])
	}
	// Zero strong raters still ranks, below the scored candidates.
	if recs[2].ID != "art_ayler" || recs[2].Score != 0 {
		t.Errorf("third rec = %+v, want art_ayler with score 0", recs[2])
	}
}

func TestRecommendArtists_SocialWeighting(t *testing.T) {
	docs, g := jazzFixture()
	// Under popularity both score 2; weighting bob as a friend lifts
	// Dolphy past Monk.
	docs.raters["art_dolphy"] = []string{"bob", "carol"}
	docs.raters["art_monk"] = []string{"dave", "erin"}
	g.friends["alice"] = []string{"bob"}
	e := testEngine(docs, g)

	recs, err := e.RecommendArtists(context.Background(), "alice", MethodSocial)
	if err != nil {
		t.Fatalf("RecommendArtists failed: %v", err)
	}
	if recs[0].ID != "art_dolphy" || recs[0].Score != 3 {
		t.Errorf("top rec = %+v, want art_dolphy scored 2+1", recs[0])
	}
	if recs[1].ID != "art_monk" || recs[1].Score != 2 {
		t.Errorf("second rec = %+v, want art_monk scored 2", recs[1])
	}
}

func TestRecommendArtists_ErrorLadder(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*fakeDocs, *fakeGraph)
		method   string
		wantCode apperr.Code
	}{
		{
			name:     "invalid method fails fast",
			mutate:   func(*fakeDocs, *fakeGraph) {},
			method:   "collaborative",
			wantCode: apperr.CodeInvalidRecMethod,
		},
		{
			name: "no strong ratings",
			mutate: func(d *fakeDocs, _ *fakeGraph) {
				d.strong["alice"] = nil
			},
			method:   MethodPopularity,
			wantCode: apperr.CodeNoRatingsFound,
		},
		{
			name: "ratings without genre data",
			mutate: func(d *fakeDocs, _ *fakeGraph) {
				d.genres = map[string][]string{}
			},
			method:   MethodPopularity,
			wantCode: apperr.CodeNoGenreDataFound,
		},
		{
			name: "no candidates survive the traversal",
			mutate: func(_ *fakeDocs, g *fakeGraph) {
				g.candidates = map[string][]graph.Candidate{}
			},
			method:   MethodPopularity,
			wantCode: apperr.CodeArtistRecsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, g := jazzFixture()
			tt.mutate(docs, g)
			e := testEngine(docs, g)

			_, err := e.RecommendArtists(context.Background(), "alice", tt.method)
			appErr, ok := apperr.As(err)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestRecommendArtists_CachesResponses(t *testing.T) {
	docs, g := jazzFixture()
	e := testEngine(docs, g)

	if _, err := e.RecommendArtists(context.Background(), "alice", MethodPopularity); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := e.RecommendArtists(context.Background(), "alice", MethodPopularity); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if docs.strongCalls != 1 {
		t.Errorf("provider called %d times, want 1 (second served from cache)", docs.strongCalls)
	}
}

func TestRecommendArtists_MaxResults(t *testing.T) {
	docs, g := jazzFixture()
	e := New(docs, g, config.RecommendConfig{
		StrongRatingThreshold: 6,
		MaxResults:            2,
		FriendWeight:          2.0,
		CacheTTL:              time.Minute,
	})

	recs, err := e.RecommendArtists(context.Background(), "alice", MethodPopularity)
	if err != nil {
		t.Fatalf("RecommendArtists failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d recs, want cap of 2", len(recs))
	}
}

func friendPicksFixture() (*fakeDocs, *fakeGraph) {
	docs := &fakeDocs{
		friendRatings: map[string][]models.UserRating{
			"bob": {
				{ID: "rel_1", Artist: "Mingus", Name: "Ah Um", Rating: 9},
				{ID: "rel_2", Artist: "Coltrane", Name: "Giant Steps", Rating: 7},
			},
			"carol": {
				{ID: "rel_3", Artist: "Monk", Name: "Brilliant Corners", Rating: 9},
			},
		},
		genreReleases: map[string][]string{
			"jazz": {"rel_1", "rel_2", "rel_3", "rel_4"},
		},
		ownIDs: map[string][]string{},
	}
	g := &fakeGraph{
		friends: map[string][]string{
			"alice": {"bob", "carol"},
		},
	}
	return docs, g
}

func TestFriendPicks_RankedByRatingThenRecency(t *testing.T) {
	docs, g := friendPicksFixture()
	e := testEngine(docs, g)

	picks, err := e.FriendPicks(context.Background(), "alice", "jazz")
	if err != nil {
		t.Fatalf("FriendPicks failed: %v", err)
	}
	if len(picks) != 3 {
		t.Fatalf("got %d picks, want 3", len(picks))
	}

	// rel_1 and rel_3 tie at 9; rel_1 is bob's first (older) rating and
	// rel_3 is carol's most recent, so rel_3 ranks first.
	if picks[0].ID != "rel_3" {
		t.Errorf("picks[0] = %+v, want rel_3 (tie broken by recency)", picks[0])
	}
	if picks[1].ID != "rel_1" || picks[1].RatedBy != "bob" {
		t.Errorf("picks[1] = %+v, want rel_1 by bob", picks[1])
	}
	if picks[2].ID != "rel_2" || picks[2].Rating != 7 {
		t.Errorf("picks[2] = %+v, want rel_2 rated 7", picks[2])
	}
}

func TestFriendPicks_DedupesOwnRatings(t *testing.T) {
	docs, g := friendPicksFixture()
	docs.ownIDs["alice"] = []string{"rel_1"}
	e := testEngine(docs, g)

	picks, err := e.FriendPicks(context.Background(), "alice", "jazz")
	if err != nil {
		t.Fatalf("FriendPicks failed: %v", err)
	}
	for _, p := range picks {
		if p.ID == "rel_1" {
			t.Errorf("picks include a release alice already rated: %+v", p)
		}
	}
}

func TestFriendPicks_DedupesSharedRelease(t *testing.T) {
	docs, g := friendPicksFixture()
	docs.friendRatings["carol"] = append(docs.friendRatings["carol"],
		models.UserRating{ID: "rel_1", Artist: "Mingus", Name: "Ah Um", Rating: 8})
	e := testEngine(docs, g)

	picks, err := e.FriendPicks(context.Background(), "alice", "jazz")
	if err != nil {
		t.Fatalf("FriendPicks failed: %v", err)
	}

	count := 0
	for _, p := range picks {
		if p.ID == "rel_1" {
			count++
			if p.Rating != 9 {
				t.Errorf("kept rating = %v, want the higher-ranked 9", p.Rating)
			}
		}
	}
	if count != 1 {
		t.Errorf("rel_1 appears %d times, want 1", count)
	}
}

func TestFriendPicks_ErrorLadder(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*fakeDocs, *fakeGraph)
		genre    string
		wantCode apperr.Code
	}{
		{
			name: "no friends",
			mutate: func(_ *fakeDocs, g *fakeGraph) {
				g.friends["alice"] = nil
			},
			genre:    "jazz",
			wantCode: apperr.CodeNoFriendsRatings,
		},
		{
			name: "friends without strong ratings",
			mutate: func(d *fakeDocs, _ *fakeGraph) {
				d.friendRatings = map[string][]models.UserRating{}
			},
			genre:    "jazz",
			wantCode: apperr.CodeNoFriendsRatings,
		},
		{
			name:     "no picks in the requested genre",
			mutate:   func(*fakeDocs, *fakeGraph) {},
			genre:    "dub",
			wantCode: apperr.CodeNoFriendRecsFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, g := friendPicksFixture()
			tt.mutate(docs, g)
			e := testEngine(docs, g)

			_, err := e.FriendPicks(context.Background(), "alice", tt.genre)
			appErr, ok := apperr.As(err)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

// A release missing from the genre index (for instance one whose artist
// record was deleted) is skipped, never an error.
func TestFriendPicks_ToleratesMissingRelease(t *testing.T) {
	docs, g := friendPicksFixture()
	docs.friendRatings["bob"] = append(docs.friendRatings["bob"],
		models.UserRating{ID: "rel_gone", Artist: "Unknown", Name: "Lost", Rating: 10})
	e := testEngine(docs, g)

	picks, err := e.FriendPicks(context.Background(), "alice", "jazz")
	if err != nil {
		t.Fatalf("FriendPicks failed: %v", err)
	}
	for _, p := range picks {
		if p.ID == "rel_gone" {
			t.Errorf("pick references a release outside the genre index: %+v", p)
		}
	}
}

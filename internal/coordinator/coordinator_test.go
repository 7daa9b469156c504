// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/harmonics/internal/apperr"
	"github.com/tomtom215/harmonics/internal/models"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// fakeDocs records every document-store call in order.
type fakeDocs struct {
	calls      []string
	release    *models.ReleaseRef
	artistName string
	cascade    *models.User
	failOn     string
}

func (f *fakeDocs) record(format string, args ...interface{}) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.HasPrefix(call, f.failOn) {
		return errors.New("document store unavailable")
	}
	return nil
}

func (f *fakeDocs) InsertUser(_ context.Context, user models.User) error {
	return f.record("insert_user %s", user.Username)
}

func (f *fakeDocs) DeleteUser(_ context.Context, username string) error {
	return f.record("delete_user %s", username)
}

func (f *fakeDocs) FindUserCascade(_ context.Context, username string) (*models.User, error) {
	if err := f.record("find_user_cascade %s", username); err != nil {
		return nil, err
	}
	return f.cascade, nil
}

func (f *fakeDocs) UpdateProfile(_ context.Context, username string, set map[string]interface{}, unset []string) error {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return f.record("update_profile %s set=%d unset=%v", username, len(keys), unset)
}

func (f *fakeDocs) PushFriend(_ context.Context, username, friend string) error {
	return f.record("push_friend %s %s", username, friend)
}

func (f *fakeDocs) PullFriend(_ context.Context, username, friend string) error {
	return f.record("pull_friend %s %s", username, friend)
}

func (f *fakeDocs) PushRating(_ context.Context, username string, rating models.UserRating) error {
	return f.record("push_rating %s %s %v", username, rating.ID, rating.Rating)
}

func (f *fakeDocs) PullRating(_ context.Context, username, releaseID string) error {
	return f.record("pull_rating %s %s", username, releaseID)
}

func (f *fakeDocs) PushFollow(_ context.Context, username string, follow models.UserFollow) error {
	return f.record("push_follow %s %s", username, follow.ID)
}

func (f *fakeDocs) PullFollow(_ context.Context, username, artistID string) error {
	return f.record("pull_follow %s %s", username, artistID)
}

func (f *fakeDocs) FindRelease(_ context.Context, releaseID string) (*models.ReleaseRef, error) {
	if err := f.record("find_release %s", releaseID); err != nil {
		return nil, err
	}
	return f.release, nil
}

func (f *fakeDocs) FindArtistName(_ context.Context, artistID string) (string, error) {
	if err := f.record("find_artist_name %s", artistID); err != nil {
		return "", err
	}
	return f.artistName, nil
}

func (f *fakeDocs) IncFollowers(_ context.Context, artistID string, delta int64) error {
	return f.record("inc_followers %s %+d", artistID, delta)
}

func (f *fakeDocs) PushReleaseRating(_ context.Context, releaseID string, rating models.ReleaseRating) error {
	return f.record("push_release_rating %s %s", releaseID, rating.Username)
}

func (f *fakeDocs) PullReleaseRating(_ context.Context, releaseID, username string) error {
	return f.record("pull_release_rating %s %s", releaseID, username)
}

// fakeExists answers precondition probes from in-memory sets.
type fakeExists struct {
	users       map[string]bool
	artists     map[string]bool
	releases    map[string]bool
	ratings     map[string]bool
	follows     map[string]bool
	friendships map[string]bool
}

func pair(a, b string) string { return a + "|" + b }

func (f *fakeExists) UserExists(_ context.Context, username string) (bool, error) {
	return f.users[username], nil
}

func (f *fakeExists) ArtistExists(_ context.Context, artistID string) (bool, error) {
	return f.artists[artistID], nil
}

func (f *fakeExists) ReleaseExists(_ context.Context, releaseID string) (bool, error) {
	return f.releases[releaseID], nil
}

func (f *fakeExists) RatingExists(_ context.Context, username, releaseID string) (bool, error) {
	return f.ratings[pair(username, releaseID)], nil
}

func (f *fakeExists) FollowExists(_ context.Context, username, artistID string) (bool, error) {
	return f.follows[pair(username, artistID)], nil
}

func (f *fakeExists) FriendshipExists(_ context.Context, username, friend string) (bool, error) {
	return f.friendships[pair(username, friend)], nil
}

type fakeGraph struct {
	applied []graph.Mutation
	err     error
}

func (f *fakeGraph) Apply(_ context.Context, m graph.Mutation) error {
	f.applied = append(f.applied, m)
	return f.err
}

type fakeRecon struct {
	queued []graph.Mutation
}

func (f *fakeRecon) Enqueue(m graph.Mutation) {
	f.queued = append(f.queued, m)
}

func newFixture() (*fakeDocs, *fakeExists, *fakeGraph, *fakeRecon, *Coordinator) {
	docs := &fakeDocs{
		release:    &models.ReleaseRef{ID: "rel_9", Artist: "Mingus", Name: "Ah Um"},
		artistName: "Mingus",
	}
	exists := &fakeExists{
		users:       map[string]bool{"alice": true, "bob": true},
		artists:     map[string]bool{"art_1": true},
		releases:    map[string]bool{"rel_9": true},
		ratings:     map[string]bool{},
		follows:     map[string]bool{},
		friendships: map[string]bool{},
	}
	g := &fakeGraph{}
	recon := &fakeRecon{}
	return docs, exists, g, recon, New(docs, exists, g, recon)
}

func TestRegister(t *testing.T) {
	docs, _, g, _, c := newFixture()

	err := c.Register(context.Background(), RegisterParams{
		Username: "carol",
		Password: "pw-secret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if len(docs.calls) != 1 || docs.calls[0] != "insert_user carol" {
		t.Errorf("document calls = %v", docs.calls)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "create_user_node" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestRegister_Conflict(t *testing.T) {
	docs, _, g, _, c := newFixture()

	err := c.Register(context.Background(), RegisterParams{Username: "alice", Password: "pw"})
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(docs.calls) != 0 || len(g.applied) != 0 {
		t.Error("precondition failure must not write anywhere")
	}
}

func TestRate_DocumentFirstThenGraph(t *testing.T) {
	docs, _, g, _, c := newFixture()

	if err := c.Rate(context.Background(), "alice", "rel_9", 8); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}

	want := []string{
		"find_release rel_9",
		"push_rating alice rel_9 8",
		"push_release_rating rel_9 alice",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "create_rated_edge" {
		t.Fatalf("graph mutations = %v", g.applied)
	}
	if g.applied[0].Params["rating"] != float64(8) {
		t.Errorf("edge rating = %v, want 8", g.applied[0].Params["rating"])
	}
}

func TestRate_DuplicateRejected(t *testing.T) {
	docs, exists, g, _, c := newFixture()
	exists.ratings[pair("alice", "rel_9")] = true

	err := c.Rate(context.Background(), "alice", "rel_9", 3)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict regardless of value, got %v", err)
	}
	for _, call := range docs.calls {
		if strings.HasPrefix(call, "push_") {
			t.Errorf("duplicate rating must not write: %v", docs.calls)
		}
	}
	if len(g.applied) != 0 {
		t.Error("duplicate rating must not touch the graph")
	}
}

func TestRate_UnknownRelease(t *testing.T) {
	docs, _, _, _, c := newFixture()
	docs.release = nil

	err := c.Rate(context.Background(), "alice", "rel_404", 8)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRate_GraphFailureEnqueuesMutation(t *testing.T) {
	docs, _, g, recon, c := newFixture()
	g.err = errors.New("neo4j down")

	// The document leg succeeded, so the caller still sees success.
	if err := c.Rate(context.Background(), "alice", "rel_9", 8); err != nil {
		t.Fatalf("partial failure must not surface to the caller: %v", err)
	}

	if len(recon.queued) != 1 {
		t.Fatalf("queued = %v, want one mutation", recon.queued)
	}
	if recon.queued[0].Kind != "create_rated_edge" {
		t.Errorf("queued kind = %q", recon.queued[0].Kind)
	}
	if len(docs.calls) != 3 {
		t.Errorf("document writes should be untouched: %v", docs.calls)
	}
}

func TestUnrate(t *testing.T) {
	docs, exists, g, _, c := newFixture()
	exists.ratings[pair("alice", "rel_9")] = true

	if err := c.Unrate(context.Background(), "alice", "rel_9"); err != nil {
		t.Fatalf("Unrate failed: %v", err)
	}

	want := []string{
		"pull_rating alice rel_9",
		"pull_release_rating rel_9 alice",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "delete_rated_edge" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

// statefulDocs layers live rating projections over fakeDocs so a
// sequence of mutations can be checked against resulting state, not
// just call order. Pushes and pulls keep the existence probe in sync
// the way the real document store does.
type statefulDocs struct {
	fakeDocs
	exists      *fakeExists
	userRatings map[string][]models.UserRating
	relRatings  map[string][]models.ReleaseRating
}

func (s *statefulDocs) PushRating(_ context.Context, username string, rating models.UserRating) error {
	if err := s.record("push_rating %s %s %v", username, rating.ID, rating.Rating); err != nil {
		return err
	}
	s.userRatings[username] = append(s.userRatings[username], rating)
	s.exists.ratings[pair(username, rating.ID)] = true
	return nil
}

func (s *statefulDocs) PullRating(_ context.Context, username, releaseID string) error {
	if err := s.record("pull_rating %s %s", username, releaseID); err != nil {
		return err
	}
	kept := s.userRatings[username][:0]
	for _, r := range s.userRatings[username] {
		if r.ID != releaseID {
			kept = append(kept, r)
		}
	}
	s.userRatings[username] = kept
	s.exists.ratings[pair(username, releaseID)] = false
	return nil
}

func (s *statefulDocs) PushReleaseRating(_ context.Context, releaseID string, rating models.ReleaseRating) error {
	if err := s.record("push_release_rating %s %s", releaseID, rating.Username); err != nil {
		return err
	}
	s.relRatings[releaseID] = append(s.relRatings[releaseID], rating)
	return nil
}

func (s *statefulDocs) PullReleaseRating(_ context.Context, releaseID, username string) error {
	if err := s.record("pull_release_rating %s %s", releaseID, username); err != nil {
		return err
	}
	kept := s.relRatings[releaseID][:0]
	for _, r := range s.relRatings[releaseID] {
		if r.Username != username {
			kept = append(kept, r)
		}
	}
	s.relRatings[releaseID] = kept
	return nil
}

func TestRate_RoundTripReplacesRating(t *testing.T) {
	exists := &fakeExists{
		users:       map[string]bool{"alice": true},
		releases:    map[string]bool{"rel_9": true},
		ratings:     map[string]bool{},
		follows:     map[string]bool{},
		friendships: map[string]bool{},
	}
	docs := &statefulDocs{
		fakeDocs:    fakeDocs{release: &models.ReleaseRef{ID: "rel_9", Artist: "Mingus", Name: "Ah Um"}},
		exists:      exists,
		userRatings: map[string][]models.UserRating{},
		relRatings:  map[string][]models.ReleaseRating{},
	}
	g := &fakeGraph{}
	c := New(docs, exists, g, &fakeRecon{})
	ctx := context.Background()

	if err := c.Rate(ctx, "alice", "rel_9", 8); err != nil {
		t.Fatalf("first Rate failed: %v", err)
	}

	// While the first rating stands, a different value is still rejected.
	if err := c.Rate(ctx, "alice", "rel_9", 5); !apperr.IsConflict(err) {
		t.Fatalf("re-rate without unrate should conflict, got %v", err)
	}

	if err := c.Unrate(ctx, "alice", "rel_9"); err != nil {
		t.Fatalf("Unrate failed: %v", err)
	}
	if err := c.Rate(ctx, "alice", "rel_9", 5); err != nil {
		t.Fatalf("re-rate after unrate failed: %v", err)
	}

	// Both projections hold exactly one entry carrying the new value.
	ur := docs.userRatings["alice"]
	if len(ur) != 1 || ur[0].ID != "rel_9" || ur[0].Rating != 5 {
		t.Errorf("user ratings = %v, want one rel_9 entry at 5", ur)
	}
	rr := docs.relRatings["rel_9"]
	if len(rr) != 1 || rr[0].Username != "alice" || rr[0].Rating != 5 {
		t.Errorf("release ratings = %v, want one alice entry at 5", rr)
	}

	// The unrate pulled both projections before the second rate pushed.
	wantCalls := []string{
		"find_release rel_9",
		"push_rating alice rel_9 8",
		"push_release_rating rel_9 alice",
		"find_release rel_9",
		"pull_rating alice rel_9",
		"pull_release_rating rel_9 alice",
		"find_release rel_9",
		"push_rating alice rel_9 5",
		"push_release_rating rel_9 alice",
	}
	if !reflect.DeepEqual(docs.calls, wantCalls) {
		t.Errorf("document calls = %v, want %v", docs.calls, wantCalls)
	}

	// The graph mirror saw create, delete, create with the final value.
	kinds := make([]string, len(g.applied))
	for i, m := range g.applied {
		kinds[i] = m.Kind
	}
	wantKinds := []string{"create_rated_edge", "delete_rated_edge", "create_rated_edge"}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("graph mutations = %v, want %v", kinds, wantKinds)
	}
	if g.applied[2].Params["rating"] != float64(5) {
		t.Errorf("final edge rating = %v, want 5", g.applied[2].Params["rating"])
	}
}

func TestUnrate_MissingRating(t *testing.T) {
	_, _, _, _, c := newFixture()

	err := c.Unrate(context.Background(), "alice", "rel_9")
	e, ok := apperr.As(err)
	if !ok || e.Code != apperr.CodeRatingNotFound {
		t.Fatalf("expected RatingNotFound, got %v", err)
	}
}

func TestFollow(t *testing.T) {
	docs, _, g, _, c := newFixture()

	if err := c.Follow(context.Background(), "alice", "art_1"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	want := []string{
		"find_artist_name art_1",
		"push_follow alice art_1",
		"inc_followers art_1 +1",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "create_follows_edge" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestFollow_AlreadyFollowing(t *testing.T) {
	_, exists, _, _, c := newFixture()
	exists.follows[pair("alice", "art_1")] = true

	err := c.Follow(context.Background(), "alice", "art_1")
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUnfollow_NotFollowing(t *testing.T) {
	_, _, _, _, c := newFixture()

	err := c.Unfollow(context.Background(), "alice", "art_1")
	e, ok := apperr.As(err)
	if !ok || e.Code != apperr.CodeFollowNotFound {
		t.Fatalf("expected FollowNotFound, got %v", err)
	}
}

func TestUnfollow(t *testing.T) {
	docs, exists, g, _, c := newFixture()
	exists.follows[pair("alice", "art_1")] = true

	if err := c.Unfollow(context.Background(), "alice", "art_1"); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}

	want := []string{
		"pull_follow alice art_1",
		"inc_followers art_1 -1",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "delete_follows_edge" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestBefriend_Symmetric(t *testing.T) {
	docs, _, g, _, c := newFixture()

	if err := c.Befriend(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Befriend failed: %v", err)
	}

	want := []string{
		"push_friend alice bob",
		"push_friend bob alice",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "create_friendship" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestBefriend_UnknownUser(t *testing.T) {
	_, _, _, _, c := newFixture()

	err := c.Befriend(context.Background(), "alice", "ghost")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUnfriend(t *testing.T) {
	docs, exists, g, _, c := newFixture()
	exists.friendships[pair("alice", "bob")] = true

	if err := c.Unfriend(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Unfriend failed: %v", err)
	}

	want := []string{
		"pull_friend alice bob",
		"pull_friend bob alice",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "delete_friendship" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestUnfriend_NoFriendship(t *testing.T) {
	_, _, _, _, c := newFixture()

	err := c.Unfriend(context.Background(), "alice", "bob")
	e, ok := apperr.As(err)
	if !ok || e.Code != apperr.CodeFriendshipNotFound {
		t.Fatalf("expected FriendshipNotFound, got %v", err)
	}
}

func TestDeleteAccount_Cascade(t *testing.T) {
	docs, _, g, _, c := newFixture()
	docs.cascade = &models.User{
		Username: "alice",
		Friends:  []string{"bob", "carol"},
		Ratings:  []models.UserRating{{ID: "rel_9"}, {ID: "rel_10"}},
		Follows:  []models.UserFollow{{ID: "art_1"}},
	}

	if err := c.DeleteAccount(context.Background(), "alice"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	want := []string{
		"find_user_cascade alice",
		"pull_friend bob alice",
		"pull_friend carol alice",
		"pull_release_rating rel_9 alice",
		"pull_release_rating rel_10 alice",
		"inc_followers art_1 -1",
		"delete_user alice",
	}
	if !reflect.DeepEqual(docs.calls, want) {
		t.Errorf("document calls = %v, want %v", docs.calls, want)
	}
	if len(g.applied) != 1 || g.applied[0].Kind != "delete_user_node" {
		t.Errorf("graph mutations = %v", g.applied)
	}
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	docs, _, g, _, c := newFixture()
	docs.cascade = nil

	err := c.DeleteAccount(context.Background(), "ghost")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if len(g.applied) != 0 {
		t.Error("unknown user must not touch the graph")
	}
}

func TestUpdateProfile(t *testing.T) {
	set := func(s string) *string { return &s }

	tests := []struct {
		name     string
		username string
		update   ProfileUpdate
		wantCode apperr.Code
		wantCall string
	}{
		{
			name:     "set name and bio",
			username: "alice",
			update:   ProfileUpdate{Name: set("Alice"), Bio: set("listener")},
			wantCall: "update_profile alice set=2 unset=[]",
		},
		{
			name:     "empty name unsets",
			username: "alice",
			update:   ProfileUpdate{Name: set("")},
			wantCall: "update_profile alice set=0 unset=[name]",
		},
		{
			name:     "no fields",
			username: "alice",
			update:   ProfileUpdate{},
			wantCode: apperr.CodeNoValidFields,
		},
		{
			name:     "empty password rejected",
			username: "alice",
			update:   ProfileUpdate{Password: set("")},
			wantCode: apperr.CodePropertyNotProvided,
		},
		{
			name:     "unknown user",
			username: "ghost",
			update:   ProfileUpdate{Name: set("Ghost")},
			wantCode: apperr.CodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, _, g, _, c := newFixture()

			err := c.UpdateProfile(context.Background(), tt.username, tt.update)
			if tt.wantCode != "" {
				e, ok := apperr.As(err)
				if !ok || e.Code != tt.wantCode {
					t.Fatalf("error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateProfile failed: %v", err)
			}
			if len(docs.calls) != 1 || docs.calls[0] != tt.wantCall {
				t.Errorf("document calls = %v, want [%s]", docs.calls, tt.wantCall)
			}
			if len(g.applied) != 0 {
				t.Error("profile updates have no graph leg")
			}
		})
	}
}

func TestDocumentFailureAborts(t *testing.T) {
	docs, _, g, recon, c := newFixture()
	docs.failOn = "push_release_rating"

	err := c.Rate(context.Background(), "alice", "rel_9", 8)
	if err == nil {
		t.Fatal("expected document-leg failure to surface")
	}
	if len(g.applied) != 0 {
		t.Error("graph leg must not run after a document failure")
	}
	if len(recon.queued) != 0 {
		t.Error("document failures are not reconciliation work")
	}
}

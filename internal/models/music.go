// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package models defines the canonical document-store records and the
// API-facing projections derived from them.
//
// The document store is the system of record. Ratings, follows and
// friendships are denormalized: the same fact lives in the owning user's
// record, in the artist/release record, and as an edge in the graph store.
// The graph side is a rebuildable projection and carries no fields of its
// own beyond identity and the rating value.
package models

// User is the canonical user record in the `users` collection.
// The password field holds a bcrypt hash, never plaintext.
type User struct {
	Username string       `bson:"username" json:"username"`
	Password string       `bson:"password" json:"-"`
	Name     string       `bson:"name,omitempty" json:"name,omitempty"`
	Bio      string       `bson:"bio,omitempty" json:"bio,omitempty"`
	Friends  []string     `bson:"friends" json:"friends"`
	Ratings  []UserRating `bson:"ratings" json:"ratings"`
	Follows  []UserFollow `bson:"follows" json:"follows"`
}

// UserRating is a rating entry embedded in a user record. Artist and
// release names are denormalized so the user's rating list renders
// without a join.
type UserRating struct {
	ID     string  `bson:"id" json:"id"`
	Artist string  `bson:"artist" json:"artist"`
	Name   string  `bson:"name" json:"name"`
	Rating float64 `bson:"rating" json:"rating"`
}

// UserFollow is a follow entry embedded in a user record.
type UserFollow struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Artist is the canonical artist record in the `artists` collection.
// QtFollowers is a denormalized counter maintained by targeted $inc
// updates; it eventually equals the number of users following the artist.
type Artist struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Genres      []string  `bson:"genres" json:"genres"`
	QtFollowers int64     `bson:"qt_followers" json:"qt_followers"`
	Releases    []Release `bson:"releases" json:"releases"`
}

// Release is embedded in its artist's record. Release IDs are globally
// unique across artists.
type Release struct {
	ID      string          `bson:"id" json:"id"`
	Name    string          `bson:"name" json:"name"`
	Ratings []ReleaseRating `bson:"ratings" json:"ratings"`
}

// ReleaseRating is a rating entry embedded in a release: the username and
// value only, the release identity being implied by position.
type ReleaseRating struct {
	Username string  `bson:"username" json:"username"`
	Rating   float64 `bson:"rating" json:"rating"`
}

// UserSummary is the GET /users/{username} projection: profile fields
// plus relationship counts.
type UserSummary struct {
	Username  string  `bson:"username" json:"username"`
	Name      *string `bson:"name" json:"name"`
	Bio       *string `bson:"bio" json:"bio"`
	QtFriends int     `bson:"qt_friends" json:"qt_friends"`
	QtRatings int     `bson:"qt_ratings" json:"qt_ratings"`
	QtFollows int     `bson:"qt_follows" json:"qt_follows"`
}

// ReleaseRef identifies a release together with its owning artist's name.
// Produced by the unwind lookup used when rating a release.
type ReleaseRef struct {
	ID     string `bson:"id" json:"id"`
	Artist string `bson:"artist" json:"artist"`
	Name   string `bson:"name" json:"name"`
}

// ArtistRec is a single scored artist recommendation.
type ArtistRec struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ReleasePick is a single friend-sourced release recommendation.
type ReleasePick struct {
	ID      string  `json:"id"`
	Artist  string  `json:"artist"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	RatedBy string  `json:"rated_by"`
}

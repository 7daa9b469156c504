// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package document implements the document-store port over MongoDB.
//
// The document store is the system of record: existence checks, profile
// data, denormalized rating/follow/friend lists and the artist follower
// counter all live here. Every operation is a targeted update (push, pull,
// inc, set) rather than a read-modify-write of the whole record, which
// keeps the race window between concurrent mutations on the same entity
// small.
//
// Lookup operations return (nil, nil) when the entity does not exist;
// mapping absence to a domain error is the caller's concern.
package document

import (
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection   = "users"
	artistsCollection = "artists"
)

// Store wraps the MongoDB database holding the users and artists
// collections.
type Store struct {
	users   *mongo.Collection
	artists *mongo.Collection
}

// New creates a Store over db.
func New(db *mongo.Database) *Store {
	return &Store{
		users:   db.Collection(usersCollection),
		artists: db.Collection(artistsCollection),
	}
}

// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package graph

import (
	"context"
	"fmt"
)

// Candidate is an artist surfaced by a recommendation traversal.
type Candidate struct {
	ID   string
	Name string
}

// Store runs typed mutations and traversal queries through a Runner.
type Store struct {
	runner Runner
}

// NewStore creates a Store over runner.
func NewStore(runner Runner) *Store {
	return &Store{runner: runner}
}

// Apply executes a mutation. On failure the caller still holds the
// mutation value and can hand it to the reconciliation queue.
func (s *Store) Apply(ctx context.Context, m Mutation) error {
	if _, err := s.runner.Run(ctx, m.Cypher, m.Params); err != nil {
		return fmt.Errorf("graph mutation %s: %w", m.Kind, err)
	}
	return nil
}

// Friends returns the usernames one FRIENDS_WITH hop from username.
// Friendship edges come in symmetric pairs, so following the outgoing
// direction is sufficient.
func (s *Store) Friends(ctx context.Context, username string) ([]string, error) {
	cypher := `MATCH (:User {username: $username})-[:FRIENDS_WITH]->(f:User)
RETURN f.username AS username`

	result, err := s.runner.Run(ctx, cypher, map[string]interface{}{"username": username})
	if err != nil {
		return nil, fmt.Errorf("graph friends query: %w", err)
	}

	friends := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		value, ok := record.Get("username")
		if !ok {
			continue
		}
		if name, ok := value.(string); ok {
			friends = append(friends, name)
		}
	}
	return friends, nil
}

// CandidateArtists returns artists sharing at least one of the given
// genres that username neither follows nor has rated strongly. Nodes
// missing from the graph are simply not matched, which is the tolerance
// the consistency model requires.
func (s *Store) CandidateArtists(ctx context.Context, username string, genres []string, strongThreshold float64) ([]Candidate, error) {
	cypher := `MATCH (a:Artist)
WHERE any(g IN a.genres WHERE g IN $genres)
  AND NOT EXISTS {
    MATCH (:User {username: $username})-[:FOLLOWS]->(a)
  }
  AND NOT EXISTS {
    MATCH (:User {username: $username})-[rel:RATED]->(:Release)-[:BY]->(a)
    WHERE rel.rating > $threshold
  }
RETURN a.id AS id, a.name AS name`

	params := map[string]interface{}{
		"username":  username,
		"genres":    genres,
		"threshold": strongThreshold,
	}

	result, err := s.runner.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("graph candidate artists query: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Records))
	for _, record := range result.Records {
		idValue, ok := record.Get("id")
		if !ok {
			continue
		}
		id, ok := idValue.(string)
		if !ok {
			continue
		}
		name := ""
		if nameValue, ok := record.Get("name"); ok {
			name, _ = nameValue.(string)
		}
		candidates = append(candidates, Candidate{ID: id, Name: name})
	}
	return candidates, nil
}

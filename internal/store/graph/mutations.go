// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package graph

// Mutation is a graph write expressed as a value: a Cypher statement plus
// its parameters, tagged with a kind for logging. Expressing writes this
// way lets a failed second-leg write be enqueued and replayed verbatim by
// the reconciliation drainer.
type Mutation struct {
	Kind   string
	Cypher string
	Params map[string]interface{}
}

// Every mutation uses MERGE or matches before deleting, so replaying one
// that already landed is a no-op. That makes the reconciliation queue
// safe against duplicate delivery.

// CreateUserNode creates the user's graph node.
func CreateUserNode(username string) Mutation {
	return Mutation{
		Kind:   "create_user_node",
		Cypher: `MERGE (u:User {username: $username})`,
		Params: map[string]interface{}{"username": username},
	}
}

// DeleteUserNode removes the user's node and every incident edge.
func DeleteUserNode(username string) Mutation {
	return Mutation{
		Kind:   "delete_user_node",
		Cypher: `MATCH (u:User {username: $username}) DETACH DELETE u`,
		Params: map[string]interface{}{"username": username},
	}
}

// CreateRatedEdge records a rating edge with its value. The value is set
// only on creation; if the edge already exists the original rating wins.
func CreateRatedEdge(username, releaseID string, rating float64) Mutation {
	return Mutation{
		Kind: "create_rated_edge",
		Cypher: `MATCH (u:User {username: $username})
MATCH (r:Release {id: $id})
MERGE (u)-[rel:RATED]->(r)
ON CREATE SET rel.rating = $rating`,
		Params: map[string]interface{}{
			"username": username,
			"id":       releaseID,
			"rating":   rating,
		},
	}
}

// DeleteRatedEdge removes the rating edge.
func DeleteRatedEdge(username, releaseID string) Mutation {
	return Mutation{
		Kind: "delete_rated_edge",
		Cypher: `MATCH (u:User {username: $username})-[rel:RATED]->(r:Release {id: $id})
DELETE rel`,
		Params: map[string]interface{}{
			"username": username,
			"id":       releaseID,
		},
	}
}

// CreateFollowsEdge records a follow edge.
func CreateFollowsEdge(username, artistID string) Mutation {
	return Mutation{
		Kind: "create_follows_edge",
		Cypher: `MATCH (u:User {username: $username})
MATCH (a:Artist {id: $id})
MERGE (u)-[:FOLLOWS]->(a)`,
		Params: map[string]interface{}{
			"username": username,
			"id":       artistID,
		},
	}
}

// DeleteFollowsEdge removes the follow edge.
func DeleteFollowsEdge(username, artistID string) Mutation {
	return Mutation{
		Kind: "delete_follows_edge",
		Cypher: `MATCH (u:User {username: $username})-[rel:FOLLOWS]->(a:Artist {id: $id})
DELETE rel`,
		Params: map[string]interface{}{
			"username": username,
			"id":       artistID,
		},
	}
}

// CreateFriendship creates both directed FRIENDS_WITH edges in one
// statement so the pair is never half-present.
func CreateFriendship(username, friend string) Mutation {
	return Mutation{
		Kind: "create_friendship",
		Cypher: `MATCH (u1:User {username: $u1})
MATCH (u2:User {username: $u2})
MERGE (u1)-[:FRIENDS_WITH]->(u2)
MERGE (u2)-[:FRIENDS_WITH]->(u1)`,
		Params: map[string]interface{}{
			"u1": username,
			"u2": friend,
		},
	}
}

// DeleteFriendship removes both directed edges. OPTIONAL MATCH tolerates
// a half-present pair left by an earlier partial failure.
func DeleteFriendship(username, friend string) Mutation {
	return Mutation{
		Kind: "delete_friendship",
		Cypher: `MATCH (u1:User {username: $u1}), (u2:User {username: $u2})
OPTIONAL MATCH (u1)-[r1:FRIENDS_WITH]->(u2)
OPTIONAL MATCH (u2)-[r2:FRIENDS_WITH]->(u1)
DELETE r1, r2`,
		Params: map[string]interface{}{
			"u1": username,
			"u2": friend,
		},
	}
}

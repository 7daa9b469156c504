// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package graph implements the graph-store port over Neo4j.
//
// The graph store mirrors the document store's relationships as typed
// edges for traversal-heavy queries. It is a rebuildable projection, not
// a system of record: writes here are the second leg of every dual write,
// and a failed write is enqueued for reconciliation rather than rolled
// back on the document side.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tomtom215/harmonics/internal/metrics"
)

// Runner executes a Cypher statement and returns the fully buffered
// result. The concrete Executor talks to Neo4j; tests and the
// reconciliation drainer consume the interface.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]interface{}) (*neo4j.EagerResult, error)
}

// Executor is the production Runner over the official Neo4j driver.
// ExecuteQuery manages sessions and transactions internally, so a single
// driver instance serves all requests.
type Executor struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewExecutor connects a driver to the given Neo4j instance.
func NewExecutor(uri, username, password, dbName string) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Executor{driver: driver, dbName: dbName}, nil
}

// Verify checks connectivity to the database.
func (e *Executor) Verify(ctx context.Context) error {
	return e.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (e *Executor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// Run executes a Cypher statement with parameters, buffering all records.
func (e *Executor) Run(ctx context.Context, cypher string, params map[string]interface{}) (result *neo4j.EagerResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation("graph", "run", start, err) }()

	result, err = neo4j.ExecuteQuery(
		ctx,
		e.driver,
		cypher,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("execute neo4j query: %w", err)
	}
	return result, nil
}

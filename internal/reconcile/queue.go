// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package reconcile repairs the graph mirror after partial dual-write
// failures. The coordinator enqueues the graph mutation that failed; the
// drainer replays queued mutations against the graph store on an
// interval, behind a circuit breaker so a down Neo4j is probed rather
// than hammered.
//
// Mutations are replayed verbatim. They are idempotent by construction
// (MERGE-based creates, match-before-delete removals), so duplicate
// replay after a crash or a spurious failure is harmless.
package reconcile

import (
	"sync"

	"github.com/tomtom215/harmonics/internal/logging"
	"github.com/tomtom215/harmonics/internal/metrics"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// pending is a queued mutation with its replay attempt count.
type pending struct {
	mutation graph.Mutation
	attempts int
}

// Queue is a bounded in-memory FIFO of graph mutations awaiting replay.
// It is the inspectable "pending reconciliation" marker: Pending exposes
// a snapshot and the depth is exported as a Prometheus gauge.
type Queue struct {
	mu       sync.Mutex
	items    []pending
	capacity int
}

// NewQueue creates a queue holding at most capacity mutations.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Enqueue adds a mutation for replay. When the queue is full the
// mutation is dropped and logged as unrecoverable; the graph mirror is
// rebuildable from the document store, so bounded loss is preferred over
// unbounded memory growth.
func (q *Queue) Enqueue(m graph.Mutation) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		logging.Error().
			Str("mutation", m.Kind).
			Int("capacity", q.capacity).
			Msg("reconciliation queue full, dropping mutation")
		metrics.ReconcileAttemptsTotal.WithLabelValues("dropped").Inc()
		return
	}

	q.items = append(q.items, pending{mutation: m})
	metrics.ReconcileQueueDepth.Set(float64(len(q.items)))
}

// Len returns the number of queued mutations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a snapshot of the queued mutations in replay order.
func (q *Queue) Pending() []graph.Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]graph.Mutation, len(q.items))
	for i, p := range q.items {
		out[i] = p.mutation
	}
	return out
}

// take removes and returns the head of the queue.
func (q *Queue) take() (pending, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pending{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	metrics.ReconcileQueueDepth.Set(float64(len(q.items)))
	return head, true
}

// requeue returns a failed mutation to the head with its attempt count.
// Head placement preserves replay order: the coordinator enqueues
// causally, and a prerequisite mutation (a user node create, say) must
// never be overtaken by the mutations enqueued behind it, or a MATCH in
// a later mutation silently no-ops against the still-missing node.
func (q *Queue) requeue(p pending) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]pending{p}, q.items...)
	metrics.ReconcileQueueDepth.Set(float64(len(q.items)))
}

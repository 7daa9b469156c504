// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/harmonics/internal/config"
	"github.com/tomtom215/harmonics/internal/logging"
	"github.com/tomtom215/harmonics/internal/metrics"
	"github.com/tomtom215/harmonics/internal/store/graph"
)

// Applier applies a graph mutation. Satisfied by the graph store.
type Applier interface {
	Apply(ctx context.Context, m graph.Mutation) error
}

// Drainer replays queued mutations on an interval. It runs as a
// supervised service: a panic or exit is restarted by the supervision
// tree, and the queue survives restarts because it lives outside the
// drainer.
type Drainer struct {
	queue       *Queue
	applier     Applier
	interval    time.Duration
	maxAttempts int
	breaker     *gobreaker.CircuitBreaker[interface{}]
	log         zerolog.Logger
}

// NewDrainer creates a drainer over queue and applier.
func NewDrainer(queue *Queue, applier Applier, cfg config.ReconcileConfig) *Drainer {
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name: "graph-reconcile",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		Timeout: cfg.Interval,
	})

	return &Drainer{
		queue:       queue,
		applier:     applier,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		breaker:     breaker,
		log:         logging.With().Str("component", "reconcile").Logger(),
	}
}

// Serve drains the queue on each tick until the context is canceled.
// Implements suture.Service.
func (d *Drainer) Serve(ctx context.Context) error {
	d.log.Info().
		Dur("interval", d.interval).
		Int("max_attempts", d.maxAttempts).
		Msg("reconciliation drainer started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.drainOnce(ctx)
		}
	}
}

// drainOnce replays queued mutations until the queue is empty or a
// replay fails. A failure ends the pass: if one write cannot reach the
// graph store, the rest will not either.
func (d *Drainer) drainOnce(ctx context.Context) {
	for {
		p, ok := d.queue.take()
		if !ok {
			return
		}

		_, err := d.breaker.Execute(func() (interface{}, error) {
			return nil, d.applier.Apply(ctx, p.mutation)
		})
		if err == nil {
			metrics.ReconcileAttemptsTotal.WithLabelValues("applied").Inc()
			d.log.Info().
				Str("mutation", p.mutation.Kind).
				Int("attempts", p.attempts+1).
				Msg("reconciled graph mutation")
			continue
		}

		if errors.Is(err, gobreaker.ErrOpenState) {
			// The breaker is open: not a real attempt, keep the count.
			d.queue.requeue(p)
			return
		}

		p.attempts++
		if p.attempts >= d.maxAttempts {
			metrics.ReconcileAttemptsTotal.WithLabelValues("dropped").Inc()
			d.log.Error().
				Err(err).
				Str("mutation", p.mutation.Kind).
				Interface("params", p.mutation.Params).
				Int("attempts", p.attempts).
				Msg("mutation unrecoverable, dropping; graph mirror needs a rebuild")
			return
		}

		metrics.ReconcileAttemptsTotal.WithLabelValues("retried").Inc()
		d.log.Warn().
			Err(err).
			Str("mutation", p.mutation.Kind).
			Int("attempts", p.attempts).
			Msg("reconciliation attempt failed, requeued")
		d.queue.requeue(p)
		return
	}
}

// String names the drainer in supervisor logs.
func (d *Drainer) String() string {
	return "reconcile.Drainer"
}

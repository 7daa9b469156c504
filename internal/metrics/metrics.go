// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package metrics defines the Prometheus instrumentation surface:
// API latency and throughput, per-store operation timings, dual-write
// partial failures, reconciliation queue behavior, and recommendation
// cache efficiency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Store operation metrics, labelled by store (document|graph)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of document and graph store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed document and graph store operations",
		},
		[]string{"store", "operation"},
	)

	// Dual-write coordinator metrics

	DualWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dual_writes_total",
			Help: "Total number of dual-write operations by outcome (applied, rejected, partial)",
		},
		[]string{"operation", "outcome"},
	)

	DualWritePartialFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dual_write_partial_failures_total",
			Help: "Graph mirror writes that failed after the document write succeeded",
		},
		[]string{"operation"},
	)

	// Reconciliation metrics

	ReconcileQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_queue_depth",
			Help: "Number of graph mutations awaiting reconciliation",
		},
	)

	ReconcileAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_attempts_total",
			Help: "Reconciliation replay attempts by outcome (applied, retried, dropped)",
		},
		[]string{"outcome"},
	)

	// Recommendation metrics

	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Recommendation computations by kind (artists, friend_picks) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Recommendation responses served from cache",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Recommendation requests that missed the cache",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveStoreOperation records the duration and outcome of one store call.
func ObserveStoreOperation(store, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(store, operation).Inc()
	}
}

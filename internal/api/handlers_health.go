// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"net/http"
	"time"
)

// HealthLive always reports alive: the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady probes both stores. The service is ready only when every
// store answers, since every mutation needs the document store and the
// read paths need both.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	stores := map[string]string{}
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			stores[name] = "unreachable: " + err.Error()
			ready = false
		} else {
			stores[name] = "ok"
		}
	}

	body := map[string]interface{}{
		"ready":  ready,
		"stores": stores,
	}
	if ready {
		rw.Success(body)
		return
	}
	rw.writeJSON(http.StatusServiceUnavailable, APIResponse{
		Success: false,
		Data:    body,
		Meta:    rw.meta(),
	})
}

// Health reports overall status plus the pending reconciliation count,
// the externally visible marker of graph-mirror divergence.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	stores := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			stores[name] = "unreachable"
			healthy = false
		} else {
			stores[name] = "ok"
		}
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	rw.Success(map[string]interface{}{
		"status":                  status,
		"stores":                  stores,
		"pending_reconciliations": h.pendingReconciliations(),
	})
}

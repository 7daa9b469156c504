// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/harmonics/internal/config"
	"github.com/tomtom215/harmonics/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be mounted with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter builds the HTTP surface: the /v1 API, Prometheus metrics on
// /metrics, and health probes.
func NewRouter(handler *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints skip rate limiting so monitors are never throttled.
	r.Route("/v1/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", handler.CreateUser)
			r.Route("/{username}", func(r chi.Router) {
				r.Get("/", handler.GetUser)
				r.Patch("/", handler.PatchUser)
				r.Delete("/", handler.DeleteUser)

				r.Get("/friends", handler.GetUserFriends)
				r.Post("/friends", handler.CreateFriend)
				r.Delete("/friends/{friend_username}", handler.DeleteFriend)

				r.Get("/ratings", handler.GetUserRatings)
				r.Post("/ratings", handler.CreateRating)
				r.Delete("/ratings/{release_id}", handler.DeleteRating)

				r.Get("/follows", handler.GetUserFollows)
				r.Post("/follows", handler.CreateFollow)
				r.Delete("/follows/{artist_id}", handler.DeleteFollow)
			})
		})

		r.Route("/artists", func(r chi.Router) {
			r.Get("/", handler.ListArtists)
			r.Get("/{artist_id}", handler.GetArtist)
		})

		r.Get("/releases/{release_id}", handler.GetRelease)

		r.Route("/recs", func(r chi.Router) {
			r.Get("/artists/{username}", handler.RecommendArtists)
			r.Get("/releases/{username}", handler.RecommendReleases)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

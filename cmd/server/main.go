// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package main is the entry point for the Harmonics server.
//
// Harmonics is a social music platform backend. Users rate releases,
// follow artists, and friend each other; the platform recommends music
// from that activity. Entity data lives in MongoDB, the system of
// record, while Neo4j holds a relationship mirror used for
// recommendation traversals. Every relationship mutation is written to
// both stores, document store first, with a reconciliation queue
// replaying graph writes that fail.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered defaults, YAML file, env vars
//  2. Logging: zerolog, structured JSON by default
//  3. MongoDB: connect and ping the document store
//  4. Neo4j: connect and verify the graph store
//  5. Wiring: coordinator, recommendation engine, reconcile drainer
//  6. Supervisor tree: reconcile layer and API layer under suture
//
// Shutdown on SIGINT or SIGTERM is graceful: the HTTP server stops
// accepting connections, in-flight requests finish within the shutdown
// timeout, then both store connections close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/harmonics/internal/api"
	"github.com/tomtom215/harmonics/internal/config"
	"github.com/tomtom215/harmonics/internal/coordinator"
	"github.com/tomtom215/harmonics/internal/logging"
	"github.com/tomtom215/harmonics/internal/recommend"
	"github.com/tomtom215/harmonics/internal/reconcile"
	"github.com/tomtom215/harmonics/internal/store/document"
	"github.com/tomtom215/harmonics/internal/store/graph"
	"github.com/tomtom215/harmonics/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("mongo_db", cfg.Mongo.Database).
		Str("neo4j_db", cfg.Neo4j.Database).
		Msg("Starting Harmonics")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Document store.
	mongoCtx, mongoCancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer mongoCancel()

	client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := client.Ping(mongoCtx, readpref.Primary()); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logging.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logging.Info().Str("uri", cfg.Mongo.URI).Msg("Connected to MongoDB")

	docs := document.New(client.Database(cfg.Mongo.Database))
	resolver := document.NewResolver(docs)

	// Graph store.
	executor, err := graph.NewExecutor(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Neo4j driver")
	}
	neoCtx, neoCancel := context.WithTimeout(ctx, cfg.Neo4j.Timeout)
	if err := executor.Verify(neoCtx); err != nil {
		neoCancel()
		logging.Fatal().Err(err).Msg("Failed to verify Neo4j connectivity")
	}
	neoCancel()
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Neo4j.Timeout)
		defer closeCancel()
		if err := executor.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing Neo4j driver")
		}
	}()
	logging.Info().Str("uri", cfg.Neo4j.URI).Msg("Connected to Neo4j")

	graphStore := graph.NewStore(executor)

	// Dual-write coordination and recommendations.
	queue := reconcile.NewQueue(cfg.Reconcile.QueueSize)
	drainer := reconcile.NewDrainer(queue, graphStore, cfg.Reconcile)
	coord := coordinator.New(docs, resolver, graphStore, queue)
	engine := recommend.New(docs, graphStore, cfg.Recommend)

	checks := map[string]api.HealthChecker{
		"document": func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		"graph": executor.Verify,
	}
	handler := api.NewHandler(coord, docs, engine, checks, queue.Len)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree.
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddReconcileService(drainer)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel; it closes when the tree has stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Harmonics stopped gracefully")
}

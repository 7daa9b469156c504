// Harmonics - Social Music Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/harmonics

// Package config provides layered application configuration using koanf v2.
//
// Precedence, lowest to highest: built-in defaults, optional YAML config
// file, environment variables. Environment variables use the HARMONICS_
// prefix with double underscore as the section separator:
//
//	HARMONICS_SERVER__PORT=8080          -> server.port
//	HARMONICS_MONGO__URI=mongodb://...   -> mongo.uri
//	HARMONICS_NEO4J__PASSWORD=secret     -> neo4j.password
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Reconcile ReconcileConfig `koanf:"reconcile"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Neo4jConfig holds graph store connection settings.
type Neo4jConfig struct {
	URI      string        `koanf:"uri"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// StrongRatingThreshold: ratings strictly greater than this count as
	// a "strong like" for recommendation inputs.
	StrongRatingThreshold float64 `koanf:"strong_rating_threshold"`

	// MaxResults caps the number of recommendations returned.
	MaxResults int `koanf:"max_results"`

	// FriendWeight multiplies strong ratings from friends when the
	// social ranking method is selected.
	FriendWeight float64 `koanf:"friend_weight"`

	// CacheTTL is how long computed recommendations are served from cache.
	// Zero disables caching.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// ReconcileConfig holds settings for the graph reconciliation drainer.
type ReconcileConfig struct {
	// QueueSize bounds the in-memory pending mutation queue.
	QueueSize int `koanf:"queue_size"`

	// Interval between drain attempts.
	Interval time.Duration `koanf:"interval"`

	// MaxAttempts per mutation before it is dropped as unrecoverable.
	MaxAttempts int `koanf:"max_attempts"`
}

// Default returns a Config with all default values. These are applied
// first, then overridden by config file and env vars.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "harmonics",
			Timeout:  10 * time.Second,
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Password: "",
			Database: "neo4j",
			Timeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			StrongRatingThreshold: 6,
			MaxResults:            10,
			FriendWeight:          2.0,
			CacheTTL:              time.Minute,
		},
		Reconcile: ReconcileConfig{
			QueueSize:   1024,
			Interval:    15 * time.Second,
			MaxAttempts: 10,
		},
	}
}

// Validate checks the configuration for values that cannot possibly work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri must not be empty")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database must not be empty")
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri must not be empty")
	}
	if c.Recommend.MaxResults < 1 {
		return fmt.Errorf("recommend.max_results must be positive, got %d", c.Recommend.MaxResults)
	}
	if c.Recommend.FriendWeight < 1 {
		return fmt.Errorf("recommend.friend_weight must be >= 1, got %v", c.Recommend.FriendWeight)
	}
	if c.Reconcile.QueueSize < 1 {
		return fmt.Errorf("reconcile.queue_size must be positive, got %d", c.Reconcile.QueueSize)
	}
	if c.Reconcile.MaxAttempts < 1 {
		return fmt.Errorf("reconcile.max_attempts must be positive, got %d", c.Reconcile.MaxAttempts)
	}
	return nil
}

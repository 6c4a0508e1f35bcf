// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package config loads simrec configuration with koanf.
//
// Configuration Loading Order:
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH, or config.yaml in the
//     working directory, or /etc/simrec/config.yaml)
//  3. Environment Variables: an explicit list of variables (see envMappings)
//
// Unknown keys in the config file are rejected so that a misspelt option
// fails at startup instead of silently keeping its default.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"time"

	"github.com/tomtom215/simrec/internal/recommend"
)

// Config holds all simrec configuration.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	PairStore  PairStoreConfig  `koanf:"pairstore"`
	Engine     recommend.Config `koanf:"engine"`
	Recompute  RecomputeConfig  `koanf:"recompute"`
	NATS       NATSConfig       `koanf:"nats"`
	Server     ServerConfig     `koanf:"server"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
	MovieLens  MovieLensConfig  `koanf:"movielens"`
}

// DatabaseConfig holds the interaction database settings.
//
// Environment Variables:
//   - DB_DRIVER: duckdb or postgres (default: duckdb)
//   - DB_DSN: DuckDB file path or Postgres connection URL
type DatabaseConfig struct {
	// Driver selects the database/sql driver.
	// Default: duckdb
	Driver string `koanf:"driver" validate:"oneof=duckdb postgres"`

	// DSN is the DuckDB database path or a Postgres connection string.
	// Default: /data/simrec/interactions.duckdb
	DSN string `koanf:"dsn" validate:"required"`

	// MaxOpenConns caps the connection pool. Zero uses runtime.NumCPU().
	MaxOpenConns int `koanf:"max_open_conns" validate:"gte=0"`

	// QueryTimeout bounds every read query.
	// Default: 30s
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`

	// Breaker configures the circuit breaker guarding the database.
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	// MaxRequests is the number of probes allowed while half-open.
	// Default: 3
	MaxRequests uint32 `koanf:"max_requests" validate:"gt=0"`

	// Interval resets failure counts while closed.
	// Default: 1m
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests is the sample size required before the breaker can trip.
	// Default: 10
	MinRequests uint32 `koanf:"min_requests"`

	// FailureRatio trips the breaker once reached.
	// Default: 0.6
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// PairStoreConfig holds BadgerDB settings for the similarity pair store.
//
// Environment Variables:
//   - PAIRSTORE_PATH: directory for the Badger files
//   - PAIRSTORE_IN_MEMORY: keep the store in memory only
type PairStoreConfig struct {
	// Path is the Badger directory.
	// Default: /data/simrec/pairs
	Path string `koanf:"path" validate:"required_unless=InMemory true"`

	// InMemory runs Badger without files. Contents are lost on exit.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every write.
	// Default: false
	SyncWrites bool `koanf:"sync_writes"`

	// MemTableSize is the Badger memtable size in bytes.
	// Default: 16MB
	MemTableSize int64 `koanf:"memtable_size" validate:"gte=1048576"`

	// NumCompactors is the number of Badger compaction goroutines.
	// Default: 2
	NumCompactors int `koanf:"num_compactors" validate:"gte=2"`

	// GCInterval is how often value log garbage collection runs.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RecomputeConfig holds the recompute queue settings.
//
// Environment Variables:
//   - RECOMPUTE_TRANSPORT: channel or nats (default: channel)
//   - RECOMPUTE_SETTLE_DELAY: wait before recomputing (default: 0s)
//   - RECOMPUTE_RATE_LIMIT: recomputes per second (default: 5)
//   - REBUILD_INTERVAL: full index rebuild period, 0 disables (default: 24h)
type RecomputeConfig struct {
	// Transport selects the message transport.
	// Default: channel
	Transport string `koanf:"transport" validate:"oneof=channel nats"`

	// Topic receives rating change events. With the nats transport it also
	// names the JetStream stream, so it must not contain dots.
	// Default: simrec_ratings_changed
	Topic string `koanf:"topic" validate:"required,excludesall=."`

	// PoisonTopic receives events that exhausted their retries.
	// Default: simrec_ratings_poison
	PoisonTopic string `koanf:"poison_topic" validate:"required,excludesall=."`

	// SettleDelay postpones each recompute so bursts of interactions settle.
	// Default: 0s
	SettleDelay time.Duration `koanf:"settle_delay" validate:"gte=0"`

	// RateLimit is the sustained number of recomputes per second.
	// Default: 5
	RateLimit float64 `koanf:"rate_limit" validate:"gt=0"`

	// RateBurst is the limiter burst size.
	// Default: 10
	RateBurst int `koanf:"rate_burst" validate:"gte=1"`

	// Throttle caps messages per second entering the router. Zero disables.
	// Default: 0
	Throttle int64 `koanf:"throttle" validate:"gte=0"`

	// MaxRetries is the number of handler retries before poisoning.
	// Default: 3
	MaxRetries int `koanf:"max_retries" validate:"gte=0"`

	// RetryInitialInterval is the first retry backoff.
	// Default: 500ms
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval" validate:"gt=0"`

	// RetryMaxInterval caps the retry backoff.
	// Default: 10s
	RetryMaxInterval time.Duration `koanf:"retry_max_interval" validate:"gtefield=RetryInitialInterval"`

	// DedupTTL is how long an event ID is remembered for deduplication.
	// Default: 10m
	DedupTTL time.Duration `koanf:"dedup_ttl" validate:"gt=0"`

	// DedupCapacity bounds the deduplication cache.
	// Default: 10000
	DedupCapacity int `koanf:"dedup_capacity" validate:"gte=1"`

	// ProfileCacheSize bounds the number of quote profiles the recompute
	// handler keeps between tasks. A changed quote's own entry is dropped
	// before it is recomputed.
	// Default: 5000
	ProfileCacheSize int `koanf:"profile_cache_size" validate:"gte=1"`

	// ProfileCacheTTL bounds how stale a cached profile of a neighbouring
	// quote may be.
	// Default: 5m
	ProfileCacheTTL time.Duration `koanf:"profile_cache_ttl" validate:"gt=0"`

	// OutputBuffer is the in-process channel buffer size.
	// Default: 256
	OutputBuffer int64 `koanf:"output_buffer" validate:"gte=0"`

	// RebuildInterval is the period of the full index rebuild. Zero disables.
	// Default: 24h
	RebuildInterval time.Duration `koanf:"rebuild_interval" validate:"gte=0"`

	// RebuildOnStartup runs a full rebuild when the worker starts.
	// Default: false
	RebuildOnStartup bool `koanf:"rebuild_on_startup"`

	// LockPath is the file locked by a running worker.
	// Default: /data/simrec/worker.lock
	LockPath string `koanf:"lock_path" validate:"required"`
}

// NATSConfig holds NATS JetStream settings, used with the nats transport.
//
// Environment Variables:
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `koanf:"url" validate:"required,url"`

	// DurablePrefix names the durable JetStream consumers.
	// Default: simrec
	DurablePrefix string `koanf:"durable_prefix" validate:"required"`

	// AckWait is how long JetStream waits for an ack before redelivery.
	// Default: 30s
	AckWait time.Duration `koanf:"ack_wait" validate:"gt=0"`
}

// ServerConfig holds the operations HTTP server settings.
//
// Environment Variables:
//   - HTTP_ADDR: listen address (default: :9090)
type ServerConfig struct {
	// Addr is the listen address for /metrics and /healthz. Empty disables.
	Addr string `koanf:"addr"`

	// ReadTimeout bounds request header reads.
	// Default: 10s
	ReadTimeout time.Duration `koanf:"read_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// SupervisorConfig holds suture tree settings.
type SupervisorConfig struct {
	// FailureThreshold is the failure count that triggers backoff.
	// Default: 5
	FailureThreshold float64 `koanf:"failure_threshold" validate:"gt=0"`

	// FailureDecay is the decay rate of the failure count, in seconds.
	// Default: 30
	FailureDecay float64 `koanf:"failure_decay" validate:"gt=0"`

	// FailureBackoff is the pause after the threshold is hit.
	// Default: 15s
	FailureBackoff time.Duration `koanf:"failure_backoff" validate:"gt=0"`

	// ShutdownTimeout bounds service shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MovieLensConfig points at a MovieLens 100K directory for offline runs.
//
// Environment Variables:
//   - MOVIELENS_DIR: directory holding u.item and u.data
type MovieLensConfig struct {
	Dir string `koanf:"dir"`
}

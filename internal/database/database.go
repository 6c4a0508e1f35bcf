// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package database stores user interactions with quotes and turns them into
// rating datasets for the similarity engine.
//
// Three tables hold the interaction signal:
//
//	quote_views      (user_id, quote_id)      weight 1
//	quote_favorites  (user_id, quote_id)      weight 5
//	anonymous_views  (session_key, quote_id)  weight 1
//
// A rater that appears in more than one table keeps the largest weight, so a
// favourite always outranks a plain view. Anonymous sessions are folded into
// the rater key space with SessionRaterID, which yields negative ids that
// never collide with user ids.
//
// DuckDB (github.com/duckdb/duckdb-go/v2) is the default driver; Postgres
// (github.com/lib/pq) is selected with driver "postgres". Both accept the
// same $n placeholders and ON CONFLICT clause, so the SQL is shared.
//
// Every call runs through a sony/gobreaker circuit breaker and records
// query latency in the simrec_source_* metrics.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
)

// DB wraps the interaction database connection.
type DB struct {
	conn         *sql.DB
	driver       string
	queryTimeout time.Duration
	breaker      *gobreaker.CircuitBreaker[any]
	logger       zerolog.Logger
}

// New opens the configured database and creates the schema if needed.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.Driver == "duckdb" {
		if err := ensureParentDir(cfg.DSN); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := NewWithConn(conn, cfg)
	db.configureConnectionPool(cfg.MaxOpenConns)

	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db.logger.Info().Str("driver", cfg.Driver).Msg("Interaction database ready")
	return db, nil
}

// NewWithConn wraps an open connection without touching the schema.
func NewWithConn(conn *sql.DB, cfg *config.DatabaseConfig) *DB {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DB{
		conn:         conn,
		driver:       cfg.Driver,
		queryTimeout: timeout,
		breaker:      newBreaker("database-"+cfg.Driver, cfg.Breaker),
		logger:       logging.WithComponent("database"),
	}
}

// ensureParentDir creates the directory holding a DuckDB file.
func ensureParentDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

func (db *DB) configureConnectionPool(maxOpen int) {
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping checks connectivity through the circuit breaker.
func (db *DB) Ping(ctx context.Context) error {
	_, err := run(ctx, db, "ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, db.conn.PingContext(ctx)
	})
	return err
}

// Conn returns the underlying *sql.DB.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

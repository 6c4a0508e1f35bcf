// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package testinfra starts Docker containers for integration tests with
// testcontainers-go.
//
// Integration tests carry the integration build tag and skip themselves when
// Docker is unavailable:
//
//	go test -tags integration ./internal/database/...
//	go test -tags "integration nats" ./internal/recompute/...
//
// # Postgres
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg)
//
//	db, err := database.New(ctx, &config.DatabaseConfig{Driver: "postgres", DSN: pg.DSN})
//
// # NATS
//
// NewNATSContainer runs a JetStream-enabled server; URL is its client
// address.
package testinfra

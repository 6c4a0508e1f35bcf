// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/simrec/internal/testinfra"
)

func TestPostgres_RoundTrip(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("NewPostgresContainer() error = %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg)

	cfg := testConfig()
	cfg.Driver = "postgres"
	cfg.DSN = pg.DSN

	db, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	exerciseDB(t, db)
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

// exerciseDB records interactions through db and reads them back as
// datasets. It runs against every supported driver.
func exerciseDB(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	record := func(name string, inserted bool, err error, want bool) {
		t.Helper()
		if err != nil || inserted != want {
			t.Fatalf("%s = %v, %v, want %v, nil", name, inserted, err, want)
		}
	}
	inserted, err := db.RecordView(ctx, 10, 1)
	record("RecordView(10, 1)", inserted, err, true)
	inserted, err = db.RecordFavorite(ctx, 10, 2)
	record("RecordFavorite(10, 2)", inserted, err, true)
	inserted, err = db.RecordView(ctx, 11, 1)
	record("RecordView(11, 1)", inserted, err, true)
	inserted, err = db.RecordAnonymousView(ctx, "s1", 2)
	record("RecordAnonymousView(s1, 2)", inserted, err, true)
	inserted, err = db.RecordView(ctx, 12, 3)
	record("RecordView(12, 3)", inserted, err, true)
	inserted, err = db.RecordView(ctx, 10, 1)
	record("RecordView(10, 1) again", inserted, err, false)

	ds, err := db.LoadItemDataset(ctx)
	if err != nil {
		t.Fatalf("LoadItemDataset() error = %v", err)
	}
	tests := []struct {
		quote, rater int64
		want         float64
	}{
		{1, 10, WeightView},
		{1, 11, WeightView},
		{2, 10, WeightFavorite},
		{2, SessionRaterID("s1"), WeightAnonymousView},
		{3, 12, WeightView},
	}
	for _, tt := range tests {
		if got := ds.Profile(tt.quote).Get(tt.rater); got != tt.want {
			t.Errorf("Profile(%d).Get(%d) = %v, want %v", tt.quote, tt.rater, got, tt.want)
		}
	}

	near, err := db.NeighbourhoodView(ctx, 1)
	if err != nil {
		t.Fatalf("NeighbourhoodView() error = %v", err)
	}
	if got := near.Keys(); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("NeighbourhoodView(1) keys = %v, want [1 2]", got)
	}
	if got := near.Profile(2).Get(SessionRaterID("s1")); got != WeightAnonymousView || near.Err() != nil {
		t.Errorf("NeighbourhoodView(1).Profile(2) anonymous = %v, %v, want %v, nil", got, near.Err(), WeightAnonymousView)
	}

	profile, err := db.UserProfile(ctx, 10)
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if profile.Get(1) != WeightView || profile.Get(2) != WeightFavorite {
		t.Errorf("UserProfile(10) = {1: %v, 2: %v}, want {1: 1, 2: 5}", profile.Get(1), profile.Get(2))
	}

	counts, err := db.ClearInteractions(ctx, true)
	if err != nil {
		t.Fatalf("ClearInteractions(dry run) error = %v", err)
	}
	want := map[string]int64{TableViews: 3, TableFavorites: 1, TableAnonymousViews: 1}
	for _, c := range counts {
		if c.Rows != want[c.Table] {
			t.Errorf("dry run count %s = %d, want %d", c.Table, c.Rows, want[c.Table])
		}
	}

	if _, err := db.ClearInteractions(ctx, false); err != nil {
		t.Fatalf("ClearInteractions() error = %v", err)
	}
	ds, err = db.LoadItemDataset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 0 {
		t.Errorf("Len() after clear = %d, want 0", ds.Len())
	}
}

func TestDuckDB_RoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "interactions.duckdb")

	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	exerciseDB(t, db)
}

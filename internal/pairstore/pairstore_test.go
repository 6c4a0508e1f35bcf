// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package pairstore

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/validation"
)

func testConfig(t *testing.T) *config.PairStoreConfig {
	t.Helper()
	return &config.PairStoreConfig{
		Path:          t.TempDir(),
		MemTableSize:  16 << 20,
		NumCompactors: 2,
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestEncodeKey_Order(t *testing.T) {
	keys := []int64{-1 << 62, -5, -1, 0, 1, 2, 255, 256, 1 << 40}
	for i := 1; i < len(keys); i++ {
		a, b := encodeKey(keys[i-1]), encodeKey(keys[i])
		if string(a) >= string(b) {
			t.Errorf("encodeKey(%d) >= encodeKey(%d)", keys[i-1], keys[i])
		}
	}
	for _, k := range keys {
		if got := decodeKey(encodeKey(k)); got != k {
			t.Errorf("decodeKey(encodeKey(%d)) = %d", k, got)
		}
	}
}

func TestPut(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(recommend.PairKey[int64]{Low: 1, High: 2}, 0.75); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	tests := []struct {
		a, b      int64
		wantScore float64
		wantFound bool
	}{
		{1, 2, 0.75, true},
		{2, 1, 0.75, true},
		{1, 3, 0, false},
	}
	for _, tt := range tests {
		score, found, err := s.Score(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Score(%d, %d) error = %v", tt.a, tt.b, err)
		}
		if found != tt.wantFound || score != tt.wantScore {
			t.Errorf("Score(%d, %d) = %v, %v, want %v, %v", tt.a, tt.b, score, found, tt.wantScore, tt.wantFound)
		}
	}

	if _, _, err := s.Score(4, 4); !errors.Is(err, recommend.ErrSelfPair) {
		t.Errorf("Score(4, 4) error = %v, want ErrSelfPair", err)
	}
}

func TestPut_RejectsNonCanonical(t *testing.T) {
	s := openTestStore(t)

	for _, pair := range []recommend.PairKey[int64]{{Low: 5, High: 3}, {Low: 4, High: 4}} {
		err := s.Put(pair, 1)
		if !errors.Is(err, ErrPairOrder) {
			t.Errorf("Put(%v) error = %v, want ErrPairOrder", pair, err)
		}
		var verr *validation.ValidationError
		if !errors.As(err, &verr) || verr.Field() != "pair" {
			t.Errorf("Put(%v) error = %T, want *validation.ValidationError on pair", pair, err)
		}
	}

	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count() = %d after rejected writes, want 0", n)
	}
}

func TestAssignAndSimilar(t *testing.T) {
	s := openTestStore(t)

	if err := s.Assign(2, []recommend.Scored[int64]{{Score: 0.9, Key: 1}, {Score: 0.4, Key: 3}}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	got, err := s.Similar(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []recommend.Scored[int64]{{Score: 0.9, Key: 1}, {Score: 0.4, Key: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Similar(2) = %v, want %v", got, want)
	}

	// Lists are directed: 3 has no list of its own, but the pair is stored.
	if got, _ := s.Similar(3, 0); len(got) != 0 {
		t.Errorf("Similar(3) = %v, want empty", got)
	}
	if score, found, _ := s.Score(3, 2); !found || score != 0.4 {
		t.Errorf("Score(3, 2) = %v, %v, want 0.4, true", score, found)
	}

	if got, _ := s.Similar(2, 1); len(got) != 1 || got[0].Key != 1 {
		t.Errorf("Similar(2, limit 1) = %v, want [item 1]", got)
	}

	if n, _ := s.Count(); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	err = s.Assign(2, []recommend.Scored[int64]{{Score: 1, Key: 2}})
	if !errors.Is(err, recommend.ErrSelfPair) {
		t.Errorf("Assign(self) error = %v, want ErrSelfPair", err)
	}
}

func TestAssign_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ranked := []recommend.Scored[int64]{{Score: 0.5, Key: 8}, {Score: 0.2, Key: 9}}

	for i := 0; i < 3; i++ {
		if err := s.Assign(7, ranked); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := s.Count(); n != 2 {
		t.Errorf("Count() = %d after repeated Assign, want 2", n)
	}
	if stats := s.Stats(); stats.IndexesWritten != 3 || stats.PairsWritten != 6 {
		t.Errorf("Stats() = %+v, want 3 indexes and 6 pairs written", stats)
	}
}

func TestAssign_ReplacesNeighbours(t *testing.T) {
	s := openTestStore(t)

	if err := s.Assign(1, []recommend.Scored[int64]{{Score: 0.9, Key: 2}, {Score: 0.5, Key: 3}, {Score: 0.1, Key: 4}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Assign(4, []recommend.Scored[int64]{{Score: 0.1, Key: 1}}); err != nil {
		t.Fatal(err)
	}

	second := []recommend.Scored[int64]{{Score: 0.7, Key: 3}}
	if err := s.Assign(1, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Similar(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("Similar(1) = %v, want %v", got, second)
	}

	tests := []struct {
		a, b      int64
		wantScore float64
		wantFound bool
	}{
		{1, 3, 0.7, true},
		{1, 2, 0, false},
		// 4 still lists 1, so the pair survives.
		{1, 4, 0.1, true},
	}
	for _, tt := range tests {
		score, found, err := s.Score(tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if found != tt.wantFound || score != tt.wantScore {
			t.Errorf("Score(%d, %d) = %v, %v, want %v, %v", tt.a, tt.b, score, found, tt.wantScore, tt.wantFound)
		}
	}

	if err := s.Assign(1, nil); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Similar(1, 0); len(got) != 0 {
		t.Errorf("Similar(1) after empty Assign = %v, want empty", got)
	}
}

func TestEngineReindexMatchesFreshIndex(t *testing.T) {
	s := openTestStore(t)

	first, err := recommend.NewEngine[int64](recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ds1 := ratings.NewDataset(map[int64]map[int64]float64{
		1: {10: 5, 11: 3},
		2: {10: 5, 11: 3},
		3: {11: 5, 12: 2},
	}, 0)
	if err := first.IndexInto(ds1, s); err != nil {
		t.Fatal(err)
	}

	cfg := recommend.DefaultConfig()
	cfg.TopK = 1
	second, err := recommend.NewEngine[int64](cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ds2 := ratings.NewDataset(map[int64]map[int64]float64{
		1: {10: 5, 11: 3},
		2: {12: 4},
		3: {11: 5, 12: 2},
	}, 0)
	if err := second.IndexInto(ds2, s); err != nil {
		t.Fatal(err)
	}

	stored, err := s.Index()
	if err != nil {
		t.Fatal(err)
	}
	want := second.Index(ds2)
	for key, ranked := range want {
		if !reflect.DeepEqual(stored[key], ranked) {
			t.Errorf("stored Index()[%d] = %v, want %v", key, stored[key], ranked)
		}
	}
	if len(stored) != len(want) {
		t.Errorf("len(Index()) = %d, want %d", len(stored), len(want))
	}
}

func TestRetain(t *testing.T) {
	s := openTestStore(t)
	for key, ranked := range map[int64][]recommend.Scored[int64]{
		1: {{Score: 0.5, Key: 2}, {Score: 0.2, Key: 3}},
		2: {{Score: 0.5, Key: 1}},
		3: {{Score: 0.2, Key: 1}},
	} {
		if err := s.Assign(key, ranked); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Retain([]int64{1, 2})
	if err != nil || removed != 1 {
		t.Fatalf("Retain() = %d, %v, want 1, nil", removed, err)
	}
	if got, _ := s.Similar(3, 0); len(got) != 0 {
		t.Errorf("Similar(3) after Retain = %v, want empty", got)
	}
	// 1 still lists 3 until its own list is reassigned.
	if _, found, _ := s.Score(1, 3); !found {
		t.Error("Score(1, 3) after Retain: pair referenced by item 1 was removed")
	}
	if n, _ := s.Count(); n != 2 {
		t.Errorf("Count() after Retain = %d, want 2", n)
	}

	if removed, _ := s.Retain([]int64{1, 2}); removed != 0 {
		t.Errorf("second Retain() = %d, want 0", removed)
	}
}

func TestEngineWritesIntoStore(t *testing.T) {
	s := openTestStore(t)
	ds := ratings.FromMatrix([][]float64{
		{5, 3, 0},
		{4, 0, 1},
		{1, 1, 5},
	})

	engine, err := recommend.NewEngine[int64](recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.IndexInto(ds, s); err != nil {
		t.Fatalf("IndexInto() error = %v", err)
	}

	stored, err := s.Index()
	if err != nil {
		t.Fatal(err)
	}
	want := engine.Index(ds)
	for key, ranked := range want {
		if len(stored[key]) != len(ranked) {
			t.Fatalf("Index()[%d] = %v, want %v", key, stored[key], ranked)
		}
		for i := range ranked {
			if stored[key][i].Key != ranked[i].Key {
				t.Errorf("Index()[%d][%d] = %v, want %v", key, i, stored[key][i], ranked[i])
			}
		}
	}

	if err := engine.PairwiseInto(ds, s); err != nil {
		t.Fatalf("PairwiseInto() error = %v", err)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	for _, hi := range []int64{2, 3, 4} {
		if err := s.Put(recommend.PairKey[int64]{Low: 1, High: hi}, 0.1); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Clear(true)
	if err != nil || n != 3 {
		t.Fatalf("Clear(dry run) = %d, %v, want 3, nil", n, err)
	}
	if left, _ := s.Count(); left != 3 {
		t.Errorf("Count() after dry run = %d, want 3", left)
	}

	n, err = s.Clear(false)
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v, want 3, nil", n, err)
	}
	if left, _ := s.Count(); left != 0 {
		t.Errorf("Count() after Clear = %d, want 0", left)
	}
	if got, _ := s.Similar(1, 0); len(got) != 0 {
		t.Errorf("Similar(1) after Clear = %v, want empty", got)
	}
}

func TestPersistence(t *testing.T) {
	cfg := testConfig(t)

	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(recommend.PairKey[int64]{Low: 10, High: 20}, 0.3); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	score, found, err := s.Score(20, 10)
	if err != nil || !found || score != 0.3 {
		t.Errorf("Score() after reopen = %v, %v, %v, want 0.3, true, nil", score, found, err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestInMemoryAndClosed(t *testing.T) {
	s, err := Open(&config.PairStoreConfig{InMemory: true, NumCompactors: 2})
	if err != nil {
		t.Fatalf("Open(in memory) error = %v", err)
	}
	if err := s.Put(recommend.PairKey[int64]{Low: 1, High: 2}, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() in memory error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.Put(recommend.PairKey[int64]{Low: 1, High: 2}, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after Close error = %v, want ErrClosed", err)
	}
}

func TestConcurrentAssign(t *testing.T) {
	s := openTestStore(t)

	var wg sync.WaitGroup
	for key := int64(1); key <= 8; key++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			ranked := []recommend.Scored[int64]{{Score: 0.5, Key: key + 100}}
			if err := s.Assign(key, ranked); err != nil {
				t.Errorf("Assign(%d) error = %v", key, err)
			}
		}(key)
	}
	wg.Wait()

	if n, _ := s.Count(); n != 8 {
		t.Errorf("Count() = %d, want 8", n)
	}
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// moviesByItem is a small ratings-by-item dataset.
func moviesByItem() *ratings.MapDataset[int64] {
	return ratings.NewDataset(map[int64]map[int64]float64{
		1: {100: 5, 101: 4, 102: 1},
		2: {100: 4, 101: 5},
		3: {102: 5, 103: 4},
		4: {103: 5},
	}, 0)
}

func newTestEngine(t *testing.T, modify func(*Config)) *Engine[int64] {
	t.Helper()
	cfg := DefaultConfig()
	if modify != nil {
		modify(cfg)
	}
	engine, err := NewEngine[int64](cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		engine, err := NewEngine[string](nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		if engine.Config().Metric != similarity.MetricCosine {
			t.Errorf("Metric = %q, want cosine", engine.Config().Metric)
		}
		if engine.Mode() != ModeWeightedAverage {
			t.Errorf("Mode() = %v, want weighted_average", engine.Mode())
		}
	})

	t.Run("unknown metric fails fast", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metric = "jaccard"
		_, err := NewEngine[string](cfg, zerolog.Nop())
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("NewEngine() error = %v, want *ConfigError", err)
		}
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		engine, _ := NewEngine[string](cfg, zerolog.Nop())
		cfg.TopK = 99
		if engine.Config().TopK != 0 {
			t.Error("engine observed caller mutation of its config")
		}
	})
}

func TestEngine_IndexMatchesCore(t *testing.T) {
	engine := newTestEngine(t, nil)
	ds := moviesByItem()

	got := engine.Index(ds)
	want := ComputeSimilarityIndex(ds, similarity.Cosine[int64])

	if len(got) != len(want) {
		t.Fatalf("Index() has %d entries, want %d", len(got), len(want))
	}
	for key, ranked := range want {
		if len(got[key]) != len(ranked) {
			t.Errorf("Index()[%d] = %v, want %v", key, got[key], ranked)
		}
	}
}

func TestEngine_Truncation(t *testing.T) {
	ds := moviesByItem()

	t.Run("top_k", func(t *testing.T) {
		engine := newTestEngine(t, func(c *Config) { c.TopK = 1 })
		for key, ranked := range engine.Index(ds) {
			if len(ranked) != 1 {
				t.Errorf("Index()[%d] has %d entries, want 1", key, len(ranked))
			}
		}
		if got := engine.Similar(ds, 1); len(got) != 1 || got[0].Key != 2 {
			t.Errorf("Similar(1) = %v, want [item 2]", got)
		}
	})

	t.Run("positive_only", func(t *testing.T) {
		engine := newTestEngine(t, func(c *Config) { c.PositiveOnly = true })
		for key, ranked := range engine.Index(ds) {
			for _, s := range ranked {
				if s.Score <= 0 {
					t.Errorf("Index()[%d] contains non-positive %v", key, s)
				}
			}
		}
		// Items 2 and 4 share no raters: cosine is 0 and the pair is dropped.
		if _, ok := engine.Pairwise(ds).Get(2, 4); ok {
			t.Error("Pairwise() kept a zero-score pair with positive_only")
		}
	})
}

func TestEngine_Recommend(t *testing.T) {
	engine := newTestEngine(t, func(c *Config) { c.Mode = "raw_sum" })
	byItem := moviesByItem()
	byUser := ratings.Transpose[int64](byItem)

	// User 103 rated items 3 and 4 only.
	recs := engine.Recommend(engine.Index(byItem), byUser.Profile(103))
	if len(recs) == 0 {
		t.Fatal("Recommend() returned nothing")
	}
	for _, r := range recs {
		if r.Key == 3 || r.Key == 4 {
			t.Errorf("Recommend() returned rated item %d", r.Key)
		}
	}
	if recs[0].Key != 1 {
		t.Errorf("Recommend()[0] = %v, want item 1 (shares rater 102 with item 3)", recs[0])
	}

	fromDataset := engine.RecommendFromDataset(byUser, 100)
	for _, r := range fromDataset {
		if r.Key == 1 || r.Key == 2 {
			t.Errorf("RecommendFromDataset() returned rated item %d", r.Key)
		}
	}

	stats := engine.Stats()
	if stats.Recommendations != 2 {
		t.Errorf("Stats().Recommendations = %d, want 2", stats.Recommendations)
	}
	if stats.Computations != 1 {
		t.Errorf("Stats().Computations = %d, want 1", stats.Computations)
	}
}

func TestEngine_IndexIntoError(t *testing.T) {
	engine := newTestEngine(t, nil)
	w := &failingInt64Writer{}

	if err := engine.IndexInto(moviesByItem(), w); !errors.Is(err, errWriteFailed) {
		t.Errorf("IndexInto() error = %v, want errWriteFailed", err)
	}
}

type failingInt64Writer struct{}

func (failingInt64Writer) Assign(int64, []Scored[int64]) error { return errWriteFailed }

func TestEngine_LogsComputations(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	engine, err := NewEngine[int64](DefaultConfig(), logger)
	if err != nil {
		t.Fatal(err)
	}
	engine.Index(moviesByItem())

	out := buf.String()
	if !strings.Contains(out, `"component":"recommend"`) {
		t.Errorf("log output missing component field: %s", out)
	}
	if !strings.Contains(out, `"operation":"index"`) {
		t.Errorf("log output missing operation field: %s", out)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	engine := newTestEngine(t, nil)
	ds := moviesByItem()
	idx := engine.Index(ds)
	byUser := ratings.Transpose[int64](ds)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				engine.Recommend(idx, byUser.Profile(100))
				engine.Similar(ds, 3)
			}
		}()
	}
	wg.Wait()

	if got := engine.Stats().Recommendations; got != 400 {
		t.Errorf("Stats().Recommendations = %d, want 400", got)
	}
}

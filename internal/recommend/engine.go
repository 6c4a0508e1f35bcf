// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"cmp"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/simrec/internal/metrics"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// Engine binds the core functions to a configured metric and mode, and
// adds logging, metrics and output truncation around them.
// It is safe for concurrent use as long as the datasets passed in are not
// mutated during a call.
type Engine[K cmp.Ordered] struct {
	config *Config
	logger zerolog.Logger
	fn     similarity.Func[K]
	mode   Mode

	computations    atomic.Int64
	recommendations atomic.Int64
}

// Stats holds engine call counters.
type Stats struct {
	Computations    int64 `json:"computations"`
	Recommendations int64 `json:"recommendations"`
}

// NewEngine creates an engine. A nil cfg means DefaultConfig().
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine[K cmp.Ordered](cfg *Config, logger zerolog.Logger) (*Engine[K], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fn, err := similarity.Lookup[K](cfg.Metric)
	if err != nil {
		return nil, &ConfigError{Field: "metric", Value: string(cfg.Metric), Err: err}
	}
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	return &Engine[K]{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Str("metric", string(cfg.Metric)).Logger(),
		fn:     fn,
		mode:   mode,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine[K]) Config() *Config {
	return e.config.Clone()
}

// Func returns the configured similarity function.
func (e *Engine[K]) Func() similarity.Func[K] {
	return e.fn
}

// Mode returns the configured aggregation mode.
func (e *Engine[K]) Mode() Mode {
	return e.mode
}

// Stats returns call counters.
func (e *Engine[K]) Stats() Stats {
	return Stats{
		Computations:    e.computations.Load(),
		Recommendations: e.recommendations.Load(),
	}
}

// Pairwise scores every unordered pair of ds.
func (e *Engine[K]) Pairwise(ds ratings.Dataset[K]) PairScores[K] {
	out := make(PairScores[K])
	_ = e.PairwiseInto(ds, out)
	return out
}

// PairwiseInto streams pairwise scores into w. With PositiveOnly set,
// pairs scoring <= 0 are not written.
func (e *Engine[K]) PairwiseInto(ds ratings.Dataset[K], w PairWriter[K]) error {
	if e.config.PositiveOnly {
		w = positivePairs[K]{inner: w}
	}
	return e.run("pairwise", ds, func() error {
		return ComputeAllPairwiseInto(ds, e.fn, w)
	})
}

// Index computes the similarity index of ds, truncated per TopK and PositiveOnly.
func (e *Engine[K]) Index(ds ratings.Dataset[K]) SimilarityIndex[K] {
	idx := make(SimilarityIndex[K], len(ds.Keys()))
	_ = e.IndexInto(ds, idx)
	return idx
}

// IndexInto streams the truncated similarity index of ds into w.
func (e *Engine[K]) IndexInto(ds ratings.Dataset[K], w IndexWriter[K]) error {
	return e.run("index", ds, func() error {
		return ComputeSimilarityIndexInto(ds, e.fn, trimmingWriter[K]{inner: w, trim: e.trim})
	})
}

// Similar returns the truncated ranked neighbours of key.
func (e *Engine[K]) Similar(ds ratings.Dataset[K], key K) []Scored[K] {
	var out []Scored[K]
	_ = e.run("similar", ds, func() error {
		out = e.trim(SimilarTo(ds, key, e.fn))
		return nil
	})
	return out
}

// Recommend ranks unrated items for target from a precomputed index using
// the configured mode.
func (e *Engine[K]) Recommend(index SimilarityIndex[K], target ratings.Profile[K]) []Scored[K] {
	start := time.Now()
	out := e.trim(RecommendFromProfiles(index, target, e.mode))
	e.recorded("index", e.mode.String(), len(target.Keys()), len(out), start)
	return out
}

// RecommendFromDataset ranks unrated items for the target entity of ds.
func (e *Engine[K]) RecommendFromDataset(ds ratings.Dataset[K], target K) []Scored[K] {
	start := time.Now()
	out := e.trim(RecommendFromDataset(ds, target, e.fn))
	e.recorded("dataset", ModeWeightedAverage.String(), len(ds.Keys()), len(out), start)
	return out
}

func (e *Engine[K]) run(operation string, ds ratings.Dataset[K], fn func() error) error {
	start := time.Now()
	entities := len(ds.Keys())

	err := fn()

	duration := time.Since(start)
	e.computations.Add(1)
	metrics.RecordSimilarity(operation, string(e.config.Metric), entities, duration)

	if err != nil {
		e.logger.Error().Err(err).
			Str("operation", operation).
			Int("entities", entities).
			Msg("similarity computation failed")
		return err
	}
	e.logger.Debug().
		Str("operation", operation).
		Int("entities", entities).
		Dur("duration", duration).
		Msg("similarity computation complete")
	return nil
}

func (e *Engine[K]) recorded(source, mode string, inputs, results int, start time.Time) {
	duration := time.Since(start)
	e.recommendations.Add(1)
	metrics.RecordRecommendation(source, mode, results, duration)
	e.logger.Debug().
		Str("source", source).
		Str("mode", mode).
		Int("inputs", inputs).
		Int("results", results).
		Dur("duration", duration).
		Msg("recommendations ranked")
}

// trim applies PositiveOnly and TopK to a list sorted by descending score.
func (e *Engine[K]) trim(ranked []Scored[K]) []Scored[K] {
	if e.config.PositiveOnly {
		n := 0
		for n < len(ranked) && ranked[n].Score > 0 {
			n++
		}
		ranked = ranked[:n]
	}
	if e.config.TopK > 0 && len(ranked) > e.config.TopK {
		ranked = ranked[:e.config.TopK]
	}
	return ranked
}

type trimmingWriter[K cmp.Ordered] struct {
	inner IndexWriter[K]
	trim  func([]Scored[K]) []Scored[K]
}

func (w trimmingWriter[K]) Assign(key K, ranked []Scored[K]) error {
	return w.inner.Assign(key, w.trim(ranked))
}

type positivePairs[K cmp.Ordered] struct {
	inner PairWriter[K]
}

func (w positivePairs[K]) Put(pair PairKey[K], score float64) error {
	if score <= 0 {
		return nil
	}
	return w.inner.Put(pair, score)
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordSimilarity tests similarity engine metric recording
func TestRecordSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		metric    string
		entities  int
		duration  time.Duration
	}{
		{name: "pairwise cosine", operation: "pairwise", metric: "cosine", entities: 10, duration: time.Millisecond},
		{name: "index pearson", operation: "index", metric: "pearson", entities: 1682, duration: 3 * time.Second},
		{name: "empty dataset", operation: "similar", metric: "sorensen", entities: 0, duration: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := SimilarityComputations.WithLabelValues(tt.operation, tt.metric)
			before := testutil.ToFloat64(counter)

			RecordSimilarity(tt.operation, tt.metric, tt.entities, tt.duration)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("SimilarityComputations delta = %v, want 1", got)
			}
		})
	}
}

// TestRecordRecommendation tests recommendation metric recording
func TestRecordRecommendation(t *testing.T) {
	counter := Recommendations.WithLabelValues("index", "weighted_average")
	before := testutil.ToFloat64(counter)

	RecordRecommendation("index", "weighted_average", 12, 2*time.Millisecond)
	RecordRecommendation("index", "weighted_average", 0, time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Recommendations delta = %v, want 2", got)
	}
}

// TestRecordRecomputeTask tests success/failure accounting for queue tasks
func TestRecordRecomputeTask(t *testing.T) {
	success := RecomputeTasks.WithLabelValues("success")
	failure := RecomputeTasks.WithLabelValues("failure")
	duplicate := RecomputeTasks.WithLabelValues("duplicate")
	published := RecomputeTasks.WithLabelValues("published")

	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)
	beforeDuplicate := testutil.ToFloat64(duplicate)
	beforePublished := testutil.ToFloat64(published)

	RecordRecomputeTask(10*time.Millisecond, nil)
	RecordRecomputeTask(10*time.Millisecond, errors.New("source unavailable"))
	RecordRecomputeTask(10*time.Millisecond, nil)
	RecordRecomputeDuplicate()
	RecordRecomputePublished()

	if got := testutil.ToFloat64(success) - beforeSuccess; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failure) - beforeFailure; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(duplicate) - beforeDuplicate; got != 1 {
		t.Errorf("duplicate delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(published) - beforePublished; got != 1 {
		t.Errorf("published delta = %v, want 1", got)
	}
	if testutil.ToFloat64(RecomputeLastSuccess) == 0 {
		t.Error("RecomputeLastSuccess not set after a successful task")
	}
}

// TestRecordPairStoreWrite tests row counting and error accounting
func TestRecordPairStoreWrite(t *testing.T) {
	writes := PairStoreWrites.WithLabelValues("pair")
	errs := PairStoreErrors.WithLabelValues("pair")
	beforeWrites := testutil.ToFloat64(writes)
	beforeErrs := testutil.ToFloat64(errs)

	RecordPairStoreWrite("pair", 5, nil)
	RecordPairStoreWrite("pair", 3, errors.New("badger: conflict"))

	if got := testutil.ToFloat64(writes) - beforeWrites; got != 5 {
		t.Errorf("PairStoreWrites delta = %v, want 5", got)
	}
	if got := testutil.ToFloat64(errs) - beforeErrs; got != 1 {
		t.Errorf("PairStoreErrors delta = %v, want 1", got)
	}
}

// TestRecordSourceQuery tests rating source error accounting
func TestRecordSourceQuery(t *testing.T) {
	errs := SourceQueryErrors.WithLabelValues("favorites")
	before := testutil.ToFloat64(errs)

	RecordSourceQuery("favorites", time.Millisecond, nil)
	RecordSourceQuery("favorites", time.Millisecond, errors.New("connection refused"))

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("SourceQueryErrors delta = %v, want 1", got)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	name := "rating_source"

	RecordCircuitBreakerTransition(name, "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 2 {
		t.Errorf("CircuitBreakerState = %v, want 2", got)
	}

	RecordCircuitBreakerTransition(name, "open", "half-open", 1)
	RecordCircuitBreakerTransition(name, "half-open", "closed", 0)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 0 {
		t.Errorf("CircuitBreakerState = %v, want 0", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(name, "closed", "open")); got < 1 {
		t.Errorf("CircuitBreakerTransitions(closed->open) = %v, want >= 1", got)
	}
}

// TestConcurrentMetricRecording verifies recording helpers are safe for concurrent use
func TestConcurrentMetricRecording(t *testing.T) {
	counter := SimilarityComputations.WithLabelValues("concurrent", "cosine")
	before := testutil.ToFloat64(counter)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordSimilarity("concurrent", "cosine", j, time.Microsecond)
				RecordRecommendation("dataset", "weighted_average", j, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(counter) - before; got != 1000 {
		t.Errorf("SimilarityComputations delta = %v, want 1000", got)
	}
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Similarity Engine Metrics
	SimilarityComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_similarity_computations_total",
			Help: "Total number of similarity engine runs",
		},
		[]string{"operation", "metric"}, // "pairwise", "index", "similar"
	)

	SimilarityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simrec_similarity_duration_seconds",
			Help:    "Duration of similarity engine runs in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
		},
		[]string{"operation", "metric"},
	)

	SimilarityEntities = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simrec_similarity_entities",
			Help:    "Number of entities in datasets passed to the similarity engine",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Recommendation Metrics
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_recommendations_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"source", "mode"}, // source: "index", "dataset"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simrec_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simrec_recommendation_results",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
		},
	)

	// Recompute Queue Metrics
	RecomputeTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_recompute_tasks_total",
			Help: "Total number of recompute tasks by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "duplicate", "published"
	)

	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simrec_recompute_duration_seconds",
			Help:    "Duration of recompute task handling in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
	)

	RecomputeLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simrec_recompute_last_success_timestamp",
			Help: "Unix timestamp of the last successful recompute",
		},
	)

	// Pair Store Metrics
	PairStoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_pairstore_writes_total",
			Help: "Total number of rows written to the pair store",
		},
		[]string{"kind"}, // "pair", "index"
	)

	PairStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_pairstore_errors_total",
			Help: "Total number of pair store write errors",
		},
		[]string{"kind"},
	)

	// Rating Source Metrics
	SourceQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simrec_source_query_duration_seconds",
			Help:    "Duration of rating source queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	SourceQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_source_query_errors_total",
			Help: "Total number of rating source query errors",
		},
		[]string{"query"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Ops HTTP Metrics
	OpsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simrec_ops_requests_total",
			Help: "Total number of ops endpoint requests",
		},
		[]string{"route", "status"},
	)

	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simrec_ops_request_duration_seconds",
			Help:    "Duration of ops endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordSimilarity records one similarity engine run over a dataset of the given size.
func RecordSimilarity(operation, metric string, entities int, duration time.Duration) {
	SimilarityComputations.WithLabelValues(operation, metric).Inc()
	SimilarityDuration.WithLabelValues(operation, metric).Observe(duration.Seconds())
	SimilarityEntities.Observe(float64(entities))
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(source, mode string, results int, duration time.Duration) {
	Recommendations.WithLabelValues(source, mode).Inc()
	RecommendationDuration.WithLabelValues(source).Observe(duration.Seconds())
	RecommendationResults.Observe(float64(results))
}

// RecordRecomputeTask records the outcome of a recompute task.
func RecordRecomputeTask(duration time.Duration, err error) {
	RecomputeDuration.Observe(duration.Seconds())
	if err != nil {
		RecomputeTasks.WithLabelValues("failure").Inc()
		return
	}
	RecomputeTasks.WithLabelValues("success").Inc()
	RecomputeLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordRecomputeDuplicate records a task dropped by deduplication.
func RecordRecomputeDuplicate() {
	RecomputeTasks.WithLabelValues("duplicate").Inc()
}

// RecordRecomputePublished records a task handed to the queue.
func RecordRecomputePublished() {
	RecomputeTasks.WithLabelValues("published").Inc()
}

// RecordPairStoreWrite records rows written to the pair store.
func RecordPairStoreWrite(kind string, rows int, err error) {
	if err != nil {
		PairStoreErrors.WithLabelValues(kind).Inc()
		return
	}
	PairStoreWrites.WithLabelValues(kind).Add(float64(rows))
}

// RecordSourceQuery records a rating source query.
func RecordSourceQuery(query string, duration time.Duration, err error) {
	SourceQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		SourceQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordCircuitBreakerTransition records a state change of a named breaker.
// States use the gauge encoding 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordOpsRequest records one request to the ops endpoints.
func RecordOpsRequest(route, status string, duration time.Duration) {
	OpsRequests.WithLabelValues(route, status).Inc()
	OpsRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

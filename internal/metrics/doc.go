// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

/*
Package metrics provides Prometheus instrumentation for simrec.

Metrics are registered on the default registry at init and exposed by the
worker's ops listener at /metrics:

	curl http://localhost:9464/metrics

# Available Metrics

Similarity engine:
  - simrec_similarity_computations_total{operation, metric}
  - simrec_similarity_duration_seconds{operation, metric}
  - simrec_similarity_entities

Recommendations:
  - simrec_recommendations_total{source, mode}
  - simrec_recommendation_duration_seconds{source}
  - simrec_recommendation_results

Recompute queue:
  - simrec_recompute_tasks_total{outcome}
  - simrec_recompute_duration_seconds
  - simrec_recompute_last_success_timestamp

Storage and sources:
  - simrec_pairstore_writes_total{kind}, simrec_pairstore_errors_total{kind}
  - simrec_source_query_duration_seconds{query}, simrec_source_query_errors_total{query}
  - simrec_circuit_breaker_state{name}, simrec_circuit_breaker_transitions_total{name, from, to}

# Usage

	start := time.Now()
	idx := recommend.ComputeSimilarityIndex(ds, fn)
	metrics.RecordSimilarity("index", "cosine", len(ds.Keys()), time.Since(start))
*/
package metrics

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package services

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tomtom215/simrec/internal/middleware"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck reports the health of one component.
type HealthCheck func(ctx context.Context) error

// HealthReport is the /healthz response body.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewOpsRouter returns the ops endpoints: /metrics (Prometheus) and
// /healthz, which runs every check and answers 503 if any fails.
func NewOpsRouter(checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(checks))
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		report := HealthReport{Status: "ok", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				report.Status = "degraded"
				report.Checks[name] = err.Error()
				continue
			}
			report.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		if report.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/metrics"
)

// ErrUnavailable is returned while the circuit breaker rejects calls.
var ErrUnavailable = errors.New("database unavailable")

// newBreaker builds the circuit breaker guarding database calls. It trips
// once FailureRatio of at least MinRequests calls in one Interval fail.
func newBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
		// A caller giving up is not a database failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// stateValue maps a breaker state to the simrec_circuit_breaker_state gauge.
func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// run executes fn under the query timeout and circuit breaker, recording
// latency under name.
func run[T any](ctx context.Context, db *DB, name string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout)
	defer cancel()

	result, err := db.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	metrics.RecordSourceQuery(name, time.Since(start), err)

	var zero T
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", name, ErrUnavailable, err)
		}
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	typed, _ := result.(T)
	return typed, nil
}

// closeQuietly closes a resource in an error path where the Close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

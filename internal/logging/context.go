// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	taskIDKey contextKey = "task_id"
	loggerKey contextKey = "logger"
)

// NewTaskID returns a short random identifier for a recompute task.
func NewTaskID() string {
	return uuid.New().String()[:8]
}

// ContextWithTaskID attaches a task identifier to ctx.
func ContextWithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// TaskIDFromContext returns the task identifier in ctx, or "".
func TaskIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores a logger in ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger stored in ctx (or the global logger) with the
// task_id field added when present.
//
//	logging.Ctx(ctx).Info().Int64("item_id", id).Msg("recomputed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		logger = Logger()
	}
	if id := TaskIDFromContext(ctx); id != "" {
		logger = logger.With().Str("task_id", id).Logger()
	}
	return &logger
}

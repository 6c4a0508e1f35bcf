// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/tomtom215/simrec/internal/cache"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/metrics"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"golang.org/x/time/rate"
)

// Source opens a live view of the items sharing a rater with itemID.
type Source interface {
	NeighbourhoodView(ctx context.Context, itemID int64) (ratings.View[int64], error)
}

// Handler recomputes the neighbours of changed items.
type Handler struct {
	source  Source
	engine  *recommend.Engine[int64]
	store   recommend.IndexWriter[int64]
	cache   *ratings.ProfileCache[int64]
	limiter *rate.Limiter
	settle  time.Duration

	processed atomic.Int64
	failed    atomic.Int64
}

// NewHandler returns a handler writing to store. Rate, settle delay and the
// profile cache bounds come from cfg.
func NewHandler(cfg *config.RecomputeConfig, source Source, engine *recommend.Engine[int64], store recommend.IndexWriter[int64]) *Handler {
	return &Handler{
		source:  source,
		engine:  engine,
		store:   store,
		cache:   ratings.NewProfileCache[int64](cfg.ProfileCacheSize, cfg.ProfileCacheTTL),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		settle:  cfg.SettleDelay,
	}
}

// Handle is the Watermill handler function for RatingChanged messages.
func (h *Handler) Handle(msg *message.Message) error {
	ev, err := DecodeRatingChanged(msg)
	if err != nil {
		return err
	}
	ctx := logging.ContextWithTaskID(msg.Context(), taskID(ev.ID))
	return h.Recompute(ctx, ev.ItemID)
}

// Recompute rewrites the stored neighbours of itemID.
func (h *Handler) Recompute(ctx context.Context, itemID int64) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecomputeTask(time.Since(start), err)
		if err != nil {
			h.failed.Add(1)
			logging.Ctx(ctx).Warn().Err(err).Int64("item_id", itemID).Msg("Recompute failed")
			return
		}
		h.processed.Add(1)
	}()

	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	if err := sleep(ctx, h.settle); err != nil {
		return err
	}

	view, err := h.source.NeighbourhoodView(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load neighbourhood of %d: %w", itemID, err)
	}
	// Only the changed item's own profile is known to be stale.
	h.cache.Invalidate(itemID)
	ds := h.cache.Wrap(view)

	ranked := h.engine.Similar(ds, itemID)
	if err := ds.Err(); err != nil {
		return fmt.Errorf("load profiles near %d: %w", itemID, err)
	}
	if err := h.store.Assign(itemID, ranked); err != nil {
		return fmt.Errorf("store neighbours of %d: %w", itemID, err)
	}

	logging.Ctx(ctx).Debug().
		Int64("item_id", itemID).
		Int("candidates", len(ds.Keys())-1).
		Int("neighbours", len(ranked)).
		Dur("duration", time.Since(start)).
		Msg("Item recomputed")
	return nil
}

// CacheStats reports the profile cache counters.
func (h *Handler) CacheStats() cache.Stats {
	return h.cache.Stats()
}

// Processed returns the number of successful recomputes.
func (h *Handler) Processed() int64 {
	return h.processed.Load()
}

// Failed returns the number of failed recompute attempts.
func (h *Handler) Failed() int64 {
	return h.failed.Load()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// taskID shortens an event ID for log lines.
func taskID(eventID string) string {
	if len(eventID) > 8 {
		return eventID[:8]
	}
	return eventID
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
)

// DatasetSource loads every item's ratings.
type DatasetSource interface {
	LoadItemDataset(ctx context.Context) (*ratings.MapDataset[int64], error)
}

// retainer drops stored lists of items that no longer exist.
type retainer interface {
	Retain(keys []int64) (int, error)
}

// Rebuilder recomputes the similarity index of every item.
type Rebuilder struct {
	source DatasetSource
	engine *recommend.Engine[int64]
	store  recommend.IndexWriter[int64]
	logger zerolog.Logger
}

// NewRebuilder returns a rebuilder writing to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuilder(source DatasetSource, engine *recommend.Engine[int64], store recommend.IndexWriter[int64], logger zerolog.Logger) *Rebuilder {
	return &Rebuilder{
		source: source,
		engine: engine,
		store:  store,
		logger: logger.With().Str("component", "rebuild").Logger(),
	}
}

// Rebuild loads the full dataset and streams its index into the store.
// Stores that can drop items are pruned to the dataset's keys afterwards.
func (r *Rebuilder) Rebuild(ctx context.Context) error {
	start := time.Now()

	ds, err := r.source.LoadItemDataset(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.engine.IndexInto(ds, r.store); err != nil {
		return fmt.Errorf("store index: %w", err)
	}
	removed := 0
	if rt, ok := r.store.(retainer); ok {
		if removed, err = rt.Retain(ds.Keys()); err != nil {
			return fmt.Errorf("prune index: %w", err)
		}
	}

	r.logger.Info().
		Int("items", ds.Len()).
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Full index rebuilt")
	return nil
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/simrec/internal/database"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/movielens"
	"github.com/tomtom215/simrec/internal/pairstore"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
)

// catalog is an item-keyed dataset plus a way to name its items.
type catalog struct {
	items *ratings.MapDataset[int64]
	title func(int64) string
}

func idTitle(id int64) string {
	return strconv.FormatInt(id, 10)
}

// useMovieLens reports whether ratings come from a MovieLens directory.
func useMovieLens() bool {
	return cfg.MovieLens.Dir != ""
}

// loadCatalog reads item ratings from MovieLens or the interaction database.
func loadCatalog(ctx context.Context) (*catalog, error) {
	if useMovieLens() {
		data, err := movielens.LoadDir(cfg.MovieLens.Dir)
		if err != nil {
			return nil, err
		}
		logging.Debug().
			Str("dir", cfg.MovieLens.Dir).
			Int("movies", data.ByItem.Len()).
			Msg("MovieLens data loaded")
		return &catalog{items: data.ByItem, title: data.Title}, nil
	}

	db, err := openDB(ctx)
	if err != nil {
		return nil, err
	}
	defer closeLogged("database", db)

	items, err := db.LoadItemDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	return &catalog{items: items, title: idTitle}, nil
}

func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func openStore() (*pairstore.Store, error) {
	store, err := pairstore.Open(&cfg.PairStore)
	if err != nil {
		return nil, fmt.Errorf("open pair store: %w", err)
	}
	return store, nil
}

func newEngine() (*recommend.Engine[int64], error) {
	return recommend.NewEngine[int64](&cfg.Engine, logging.Logger())
}

type closer interface {
	Close() error
}

func closeLogged(name string, c closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("resource", name).Msg("Close failed")
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/recommend/ratings"
)

var (
	recommendLimit     int
	recommendUserBased bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend USER",
	Short: "Recommend items USER has not rated",
	Long: `Recommend items USER has not rated yet, best first.

Item-based (default): USER's ratings are combined with the item similarity
index using the configured mode. With --movielens the index is computed on
the fly; otherwise it is read from the pair store.

User-based (--user-based, MovieLens only): items are scored from the ratings
of users similar to USER, as a similarity-weighted average.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 20, "number of items to print (0 prints all)")
	recommendCmd.Flags().BoolVar(&recommendUserBased, "user-based", false, "score items from similar users instead of similar items")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	user, err := parseID(args[0], "user")
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}

	var (
		ranked []recommend.Scored[int64]
		title  = idTitle
	)
	if useMovieLens() {
		cat, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		title = cat.title
		if ranked, err = recommendMovieLens(engine, cat.items, user); err != nil {
			return err
		}
	} else {
		if recommendUserBased {
			return fmt.Errorf("--user-based requires --movielens")
		}
		if ranked, err = recommendStored(cmd.Context(), engine, user); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recommendations for user %d (%s, %s):\n", user, cfg.Engine.Metric, engine.Mode())
	return printScored(cmd.OutOrStdout(), ranked, title, recommendLimit)
}

func recommendMovieLens(engine *recommend.Engine[int64], items *ratings.MapDataset[int64], user int64) ([]recommend.Scored[int64], error) {
	users := ratings.Transpose(items)
	if !users.Has(user) {
		return nil, fmt.Errorf("user %d has no ratings", user)
	}
	if recommendUserBased {
		return engine.RecommendFromDataset(users, user), nil
	}
	return engine.Recommend(engine.Index(items), users.Profile(user)), nil
}

func recommendStored(ctx context.Context, engine *recommend.Engine[int64], user int64) ([]recommend.Scored[int64], error) {
	db, err := openDB(ctx)
	if err != nil {
		return nil, err
	}
	defer closeLogged("database", db)

	profile, err := db.UserProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(profile.Keys()) == 0 {
		return nil, fmt.Errorf("user %d has no interactions", user)
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeLogged("pair store", store)

	index, err := store.Index()
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("pair store is empty, run 'simrec index' first")
	}
	return engine.Recommend(index, profile), nil
}

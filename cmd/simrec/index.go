// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/recompute"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the stored similarity index",
	Long: `Compute the similarity of every item to every other item and store the
scores in the pair store, where 'similar --from-store', 'recommend' and the
recompute worker read them.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start := time.Now()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	if useMovieLens() {
		cat, err := loadCatalog(ctx)
		if err != nil {
			return err
		}
		if err := engine.IndexInto(cat.items, store); err != nil {
			return err
		}
		if _, err := store.Retain(cat.items.Keys()); err != nil {
			return err
		}
	} else {
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer closeLogged("database", db)

		rebuilder := recompute.NewRebuilder(db, engine, store, logging.WithComponent("index"))
		if err := rebuilder.Rebuild(ctx); err != nil {
			return err
		}
	}

	n, err := store.Count()
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), fmt.Sprintf("%s pairs stored in %s", formatCount(int64(n)), time.Since(start).Round(time.Millisecond)))
	return nil
}

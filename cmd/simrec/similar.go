// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	similarLimit     int
	similarFromStore bool
)

var similarCmd = &cobra.Command{
	Use:   "similar ITEM",
	Short: "List the items most similar to ITEM",
	Long: `List every other item ranked by similarity to ITEM, best first.

By default the scores are computed from the current ratings. With
--from-store they are read from the pair store written by 'simrec index'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 20, "number of items to print (0 prints all)")
	similarCmd.Flags().BoolVar(&similarFromStore, "from-store", false, "read stored scores instead of computing them")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	item, err := parseID(args[0], "item")
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if similarFromStore {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer closeLogged("pair store", store)

		ranked, err := store.Similar(item, similarLimit)
		if err != nil {
			return err
		}
		return printScored(cmd.OutOrStdout(), ranked, idTitle, similarLimit)
	}

	cat, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	if !cat.items.Has(item) {
		return fmt.Errorf("item %d has no ratings", item)
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}

	ranked := engine.Similar(cat.items, item)
	fmt.Fprintf(cmd.OutOrStdout(), "Items similar to %s (%s):\n", cat.title(item), cfg.Engine.Metric)
	return printScored(cmd.OutOrStdout(), ranked, cat.title, similarLimit)
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tomtom215/simrec/internal/recommend"
)

var pairsStore bool

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Score every unordered pair of items",
	Long: `Score every unordered pair of distinct items with the configured metric.

Pairs are printed lowest key first. With --store they are written to the
pair store instead.`,
	Args: cobra.NoArgs,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().BoolVar(&pairsStore, "store", false, "write scores to the pair store instead of printing them")
	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if pairsStore {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer closeLogged("pair store", store)

		if err := engine.PairwiseInto(cat.items, store); err != nil {
			return err
		}
		printOK(out, fmt.Sprintf("%s pairs written", formatCount(store.Stats().PairsWritten)))
		return nil
	}

	scores := engine.Pairwise(cat.items)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOW\tHIGH\tSCORE")
	for _, pair := range recommend.MakePairs(cat.items.Keys()) {
		score, ok := scores.Get(pair.Low, pair.High)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%.4f\n", pair.Low, pair.High, score)
	}
	return tw.Flush()
}

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
	clearDryRun       bool
	clearInteractions bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete stored similarity scores",
	Long: `Delete every stored similarity score. With --interactions the recorded
views and favourites are deleted as well. --dry-run only reports what would
be deleted.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearDryRun, "dry-run", false, "report counts without deleting")
	clearCmd.Flags().BoolVar(&clearInteractions, "interactions", false, "also delete recorded interactions")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	report := printOK
	verb := "deleted"
	if clearDryRun {
		report = printInfo
		verb = "would be deleted"
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	n, err := store.Clear(clearDryRun)
	if err != nil {
		return err
	}
	report(out, fmt.Sprintf("%s similarity pairs %s", formatCount(int64(n)), verb))

	if !clearInteractions {
		return nil
	}

	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer closeLogged("database", db)

	tables, err := db.ClearInteractions(cmd.Context(), clearDryRun)
	if err != nil {
		return err
	}
	for _, t := range tables {
		report(out, fmt.Sprintf("%s rows in %s %s", formatCount(t.Rows), t.Table, verb))
	}
	return nil
}

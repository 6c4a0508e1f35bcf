// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/tomtom215/simrec/internal/recommend"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Icon semantics:
//
//	✓  success
//	✗  error (stderr)
//	⚠  warning
//	~  dry run / no change

var counts = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	return counts.Sprintf("%d", n)
}

func printOK(w io.Writer, msg string) {
	fmt.Fprintf(w, "  ✓  %s\n", msg)
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintf(w, "  ~  %s\n", msg)
}

func printWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "  ⚠  %s\n", msg)
}

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "  ✗  %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "  ✗  [%s] %s\n", name, msg)
	}
}

// printScored writes a ranked list as an aligned table. limit > 0 truncates.
func printScored(w io.Writer, ranked []recommend.Scored[int64], title func(int64) string, limit int) error {
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		printInfo(w, "no results")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tID\tTITLE")
	for i, s := range ranked {
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%s\n", i+1, s.Score, s.Key, title(s.Key))
	}
	return tw.Flush()
}

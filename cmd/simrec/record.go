// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/spf13/cobra"
	"github.com/tomtom215/simrec/internal/database"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/recompute"
)

var recordCmd = &cobra.Command{
	Use:   "record KIND RATER ITEM",
	Short: "Record an interaction and refresh the item's similarities",
	Long: `Record a view, favourite or anonymous view of ITEM.

KIND is one of view, favorite or anonymous-view. RATER is a user id, or a
session key for anonymous views.

When the interaction is new, the item's similarities are refreshed: with the
nats transport an event is published for the worker; with the in-process
channel transport they are recomputed here.`,
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"view", "favorite", "anonymous-view"},
	RunE:      runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func parseInteraction(args []string) (database.Interaction, error) {
	in := database.Interaction{Kind: database.Kind(strings.ReplaceAll(args[0], "-", "_"))}
	item, err := parseID(args[2], "item")
	if err != nil {
		return in, err
	}
	in.QuoteID = item

	if in.Kind == database.KindAnonymousView {
		in.SessionKey = args[1]
		return in, nil
	}
	user, err := parseID(args[1], "user")
	if err != nil {
		return in, err
	}
	in.UserID = user
	return in, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	in, err := parseInteraction(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeLogged("database", db)

	inserted, err := db.Record(ctx, in)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !inserted {
		printInfo(out, fmt.Sprintf("%s of item %d already recorded", in.Kind, in.QuoteID))
		return nil
	}
	printOK(out, fmt.Sprintf("%s of item %d recorded", in.Kind, in.QuoteID))

	if cfg.Recompute.Transport == recompute.TransportChannel {
		if err := recomputeInline(ctx, db, in.QuoteID); err != nil {
			return err
		}
		printOK(out, fmt.Sprintf("similarities of item %d refreshed", in.QuoteID))
		return nil
	}

	if err := publishChange(ctx, in); err != nil {
		return err
	}
	printOK(out, fmt.Sprintf("recompute of item %d queued", in.QuoteID))
	return nil
}

// recomputeInline refreshes one item when no worker can receive events.
func recomputeInline(ctx context.Context, db *database.DB, item int64) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeLogged("pair store", store)

	handler := recompute.NewHandler(&cfg.Recompute, db, engine, store)
	return handler.Recompute(ctx, item)
}

func publishChange(ctx context.Context, in database.Interaction) error {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger("recompute"))
	transport, err := recompute.NewTransport(&cfg.Recompute, &cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer closeLogged("transport", transport)

	return recompute.NewPublisher(transport.Publisher, cfg.Recompute.Topic).
		ItemChanged(ctx, in.QuoteID, string(in.Kind))
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/simrec/internal/validation"
)

// Kind is the type of a recorded interaction.
type Kind string

// Interaction kinds.
const (
	KindView          Kind = "view"
	KindFavorite      Kind = "favorite"
	KindAnonymousView Kind = "anonymous_view"
)

// Interaction is one user or session touching a quote.
type Interaction struct {
	Kind       Kind      `validate:"oneof=view favorite anonymous_view"`
	UserID     int64     `validate:"required_unless=Kind anonymous_view,gte=0"`
	SessionKey string    `validate:"required_if=Kind anonymous_view,max=40"`
	QuoteID    int64     `validate:"gt=0"`
	At         time.Time `validate:"-"`
}

// Weight returns the rating weight of the interaction.
func (in *Interaction) Weight() float64 {
	switch in.Kind {
	case KindFavorite:
		return WeightFavorite
	case KindAnonymousView:
		return WeightAnonymousView
	default:
		return WeightView
	}
}

// RaterID returns the rater key the interaction contributes to.
func (in *Interaction) RaterID() int64 {
	if in.Kind == KindAnonymousView {
		return SessionRaterID(in.SessionKey)
	}
	return in.UserID
}

// Record stores an interaction. It reports false when the same interaction
// was already stored.
func (db *DB) Record(ctx context.Context, in Interaction) (bool, error) {
	if err := validation.ValidateStruct(&in); err != nil {
		return false, err
	}
	if in.At.IsZero() {
		in.At = time.Now().UTC()
	}

	var (
		q     string
		rater any
	)
	switch in.Kind {
	case KindView:
		q = `INSERT INTO quote_views (user_id, quote_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
		rater = in.UserID
	case KindFavorite:
		q = `INSERT INTO quote_favorites (user_id, quote_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
		rater = in.UserID
	case KindAnonymousView:
		q = `INSERT INTO anonymous_views (session_key, quote_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
		rater = in.SessionKey
	}

	return run(ctx, db, "record_"+string(in.Kind), func(ctx context.Context) (bool, error) {
		res, err := db.conn.ExecContext(ctx, q, rater, in.QuoteID, in.At)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rows affected: %w", err)
		}
		return n > 0, nil
	})
}

// RecordView records a signed-in user viewing a quote.
func (db *DB) RecordView(ctx context.Context, userID, quoteID int64) (bool, error) {
	return db.Record(ctx, Interaction{Kind: KindView, UserID: userID, QuoteID: quoteID})
}

// RecordFavorite records a user marking a quote as a favourite.
func (db *DB) RecordFavorite(ctx context.Context, userID, quoteID int64) (bool, error) {
	return db.Record(ctx, Interaction{Kind: KindFavorite, UserID: userID, QuoteID: quoteID})
}

// RecordAnonymousView records an anonymous session viewing a quote.
func (db *DB) RecordAnonymousView(ctx context.Context, sessionKey string, quoteID int64) (bool, error) {
	return db.Record(ctx, Interaction{Kind: KindAnonymousView, SessionKey: sessionKey, QuoteID: quoteID})
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// ClearInteractions counts the rows of every interaction table and, unless
// dryRun is set, deletes them in one transaction. Counts are returned in
// Tables order either way.
func (db *DB) ClearInteractions(ctx context.Context, dryRun bool) ([]TableCount, error) {
	return run(ctx, db, "clear", func(ctx context.Context) ([]TableCount, error) {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		counts := make([]TableCount, 0, len(Tables))
		for _, table := range Tables {
			var n int64
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
				return nil, fmt.Errorf("count %s: %w", table, err)
			}
			counts = append(counts, TableCount{Table: table, Rows: n})
			if dryRun {
				continue
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return nil, fmt.Errorf("delete %s: %w", table, err)
			}
		}

		if dryRun {
			return counts, nil
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return counts, nil
	})
}

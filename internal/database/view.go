// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
)

// QuoteView is a live dataset over the interaction tables. Its keys are
// fixed when the view is built; each Profile call queries the raters of
// one quote.
type QuoteView struct {
	db   *DB
	ctx  context.Context
	keys []int64

	mu  sync.Mutex
	err error
}

var _ ratings.View[int64] = (*QuoteView)(nil)

// NeighbourhoodView returns a view over quoteID and every quote sharing a
// rater with it. quoteID is always a key, even when nobody rated it. ctx
// bounds the profile queries made through the view.
func (db *DB) NeighbourhoodView(ctx context.Context, quoteID int64) (ratings.View[int64], error) {
	keys, err := run(ctx, db, "related_quotes", func(ctx context.Context) ([]int64, error) {
		q := fmt.Sprintf(relatedQuotesSQL, quoteUsersSQL)
		rows, err := db.conn.QueryContext(ctx, q, quoteID)
		if err != nil {
			return nil, fmt.Errorf("query related quotes: %w", err)
		}
		keys := []int64{quoteID}
		err = scanRows(rows, func() error {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			keys = append(keys, id)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan related quotes: %w", err)
		}
		return keys, nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(keys)
	return &QuoteView{db: db, ctx: ctx, keys: slices.Compact(keys)}, nil
}

// QuoteRaters returns the raters of quoteID with their weights. Anonymous
// sessions appear under their SessionRaterID.
func (db *DB) QuoteRaters(ctx context.Context, quoteID int64) (ratings.Profile[int64], error) {
	return run(ctx, db, "quote_raters", func(ctx context.Context) (ratings.Profile[int64], error) {
		b := ratings.NewBuilder[int64](0)
		b.AddEntity(quoteID)
		if err := db.collect(ctx, b, "WHERE quote_id = $1", []any{quoteID}); err != nil {
			return nil, err
		}
		return b.Build().Profile(quoteID), nil
	})
}

// Keys implements ratings.Dataset.
func (v *QuoteView) Keys() []int64 {
	return slices.Clone(v.keys)
}

// Profile implements ratings.Dataset. A failed query yields an empty
// profile and is reported by Err.
func (v *QuoteView) Profile(quoteID int64) ratings.Profile[int64] {
	p, err := v.db.QuoteRaters(v.ctx, quoteID)
	if err != nil {
		v.mu.Lock()
		if v.err == nil {
			v.err = err
		}
		v.mu.Unlock()
		return ratings.NewProfile[int64](nil, 0)
	}
	return p
}

// Err returns the first failed profile query.
func (v *QuoteView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

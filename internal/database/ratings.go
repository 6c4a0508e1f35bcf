// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
)

// Interaction weights.
const (
	WeightView          = 1.0
	WeightFavorite      = 5.0
	WeightAnonymousView = 1.0
)

// relatedQuotesSQL selects every quote that shares a rater with quote $1,
// including $1 itself when it has any rater. %[1]s is quoteUsersSQL.
const relatedQuotesSQL = `
	SELECT quote_id FROM quote_views WHERE user_id IN (%[1]s)
	UNION SELECT quote_id FROM quote_favorites WHERE user_id IN (%[1]s)
	UNION SELECT quote_id FROM anonymous_views WHERE session_key IN (
		SELECT session_key FROM anonymous_views WHERE quote_id = $1)`

const quoteUsersSQL = `
		SELECT user_id FROM quote_views WHERE quote_id = $1
		UNION SELECT user_id FROM quote_favorites WHERE quote_id = $1`

// SessionRaterID maps an anonymous session key to a negative rater id.
func SessionRaterID(sessionKey string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sessionKey))
	return -int64(h.Sum64()>>1) - 1
}

// interactionSource is one interaction table and the weight of its rows.
type interactionSource struct {
	table     string
	raterCol  string
	weight    float64
	anonymous bool
}

var interactionSources = []interactionSource{
	{table: TableViews, raterCol: "user_id", weight: WeightView},
	{table: TableFavorites, raterCol: "user_id", weight: WeightFavorite},
	{table: TableAnonymousViews, raterCol: "session_key", weight: WeightAnonymousView, anonymous: true},
}

// LoadItemDataset returns every interaction as ratings keyed by quote, then
// rater.
func (db *DB) LoadItemDataset(ctx context.Context) (*ratings.MapDataset[int64], error) {
	return run(ctx, db, "load_items", func(ctx context.Context) (*ratings.MapDataset[int64], error) {
		b := ratings.NewBuilder[int64](0)
		if err := db.collect(ctx, b, "", nil); err != nil {
			return nil, err
		}
		return b.Build(), nil
	})
}

// UserProfile returns the quotes rated by userID with their weights.
func (db *DB) UserProfile(ctx context.Context, userID int64) (ratings.Profile[int64], error) {
	return run(ctx, db, "user_profile", func(ctx context.Context) (ratings.Profile[int64], error) {
		b := ratings.NewBuilder[int64](0)
		b.AddEntity(userID)
		for _, src := range interactionSources[:2] {
			q := fmt.Sprintf("SELECT quote_id FROM %s WHERE user_id = $1", src.table)
			rows, err := db.conn.QueryContext(ctx, q, userID)
			if err != nil {
				return nil, fmt.Errorf("query %s: %w", src.table, err)
			}
			err = scanRows(rows, func() error {
				var quoteID int64
				if err := rows.Scan(&quoteID); err != nil {
					return err
				}
				b.SetMax(userID, quoteID, src.weight)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", src.table, err)
			}
		}
		return b.Build().Profile(userID), nil
	})
}

// collect adds the rows of every interaction table matching filter to b.
func (db *DB) collect(ctx context.Context, b *ratings.Builder[int64], filter string, args []any) error {
	for _, src := range interactionSources {
		q := fmt.Sprintf("SELECT quote_id, %s FROM %s %s", src.raterCol, src.table, filter)
		rows, err := db.conn.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("query %s: %w", src.table, err)
		}
		err = scanRows(rows, func() error {
			var quoteID, rater int64
			if src.anonymous {
				var session string
				if err := rows.Scan(&quoteID, &session); err != nil {
					return err
				}
				rater = SessionRaterID(session)
			} else if err := rows.Scan(&quoteID, &rater); err != nil {
				return err
			}
			b.SetMax(quoteID, rater, src.weight)
			return nil
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", src.table, err)
		}
	}
	return nil
}

// scanRows calls fn for each row and closes rows.
func scanRows(rows *sql.Rows, fn func() error) error {
	defer closeQuietly(rows)
	for rows.Next() {
		if err := fn(); err != nil {
			return err
		}
	}
	return rows.Err()
}

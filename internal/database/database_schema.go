// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package database

import (
	"context"
	"fmt"
	"time"
)

// Interaction table names.
const (
	TableViews          = "quote_views"
	TableFavorites      = "quote_favorites"
	TableAnonymousViews = "anonymous_views"
)

// Tables lists the interaction tables in clearing order.
var Tables = []string{TableViews, TableFavorites, TableAnonymousViews}

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS quote_views (
		user_id    BIGINT    NOT NULL,
		quote_id   BIGINT    NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, quote_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quote_favorites (
		user_id    BIGINT    NOT NULL,
		quote_id   BIGINT    NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, quote_id)
	)`,
	`CREATE TABLE IF NOT EXISTS anonymous_views (
		session_key VARCHAR(40) NOT NULL,
		quote_id    BIGINT      NOT NULL,
		created_at  TIMESTAMP   NOT NULL,
		PRIMARY KEY (session_key, quote_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_views_quote ON quote_views (quote_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_favorites_quote ON quote_favorites (quote_id)`,
	`CREATE INDEX IF NOT EXISTS idx_anonymous_views_quote ON anonymous_views (quote_id)`,
}

// createTables creates the interaction tables and their quote_id indexes.
func (db *DB) createTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for _, q := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

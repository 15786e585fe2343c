// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the database tables and indexes
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS uploads_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	// content holds the raw uploaded bytes.
	`CREATE TABLE IF NOT EXISTS uploads (
		id BIGINT PRIMARY KEY DEFAULT nextval('uploads_id_seq'),
		user_id BIGINT NOT NULL,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		file_format TEXT NOT NULL,
		total_posts INTEGER NOT NULL,
		column_names TEXT NOT NULL,
		content BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		upload_id BIGINT NOT NULL,
		average_likes DOUBLE NOT NULL,
		max_likes DOUBLE NOT NULL,
		min_likes DOUBLE NOT NULL,
		average_growth DOUBLE,
		max_growth DOUBLE,
		min_growth DOUBLE,
		best_posting_hour INTEGER,
		platform_analysis TEXT NOT NULL,
		total_posts_analyzed INTEGER NOT NULL,
		model_family TEXT NOT NULL,
		retrained BOOLEAN NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions(user_id, created_at)`,
}

// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Upload formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Upload is a stored dataset. Content is only populated by GetUpload.
type Upload struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Format           string    `json:"format"`
	TotalPosts       int       `json:"total_posts"`
	Columns          []string  `json:"columns"`
	Content          []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateUpload stores an upload and sets its ID.
func (db *DB) CreateUpload(ctx context.Context, upload *Upload) error {
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}
	columns, err := json.Marshal(upload.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}

	query := `INSERT INTO uploads (user_id, filename, original_filename, file_format, total_posts, column_names, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	err = db.conn.QueryRowContext(ctx, query,
		upload.UserID, upload.Filename, upload.OriginalFilename, upload.Format,
		upload.TotalPosts, string(columns), upload.Content, upload.CreatedAt,
	).Scan(&upload.ID)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

// GetUpload returns the user's upload including its content.
func (db *DB) GetUpload(ctx context.Context, userID, id int64) (*Upload, error) {
	query := `SELECT id, user_id, filename, original_filename, file_format, total_posts, column_names, content, created_at
		FROM uploads WHERE id = ? AND user_id = ?`

	var u Upload
	var columns string
	err := db.conn.QueryRowContext(ctx, query, id, userID).Scan(
		&u.ID, &u.UserID, &u.Filename, &u.OriginalFilename, &u.Format,
		&u.TotalPosts, &columns, &u.Content, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	if err := json.Unmarshal([]byte(columns), &u.Columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return &u, nil
}

// ListUploads returns the user's uploads newest first, without content.
// A limit <= 0 returns all.
func (db *DB) ListUploads(ctx context.Context, userID int64, limit int) ([]Upload, error) {
	query := `SELECT id, user_id, filename, original_filename, file_format, total_posts, column_names, created_at
		FROM uploads WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer closeQuietly(rows)

	uploads := []Upload{}
	for rows.Next() {
		var u Upload
		var columns string
		if err := rows.Scan(&u.ID, &u.UserID, &u.Filename, &u.OriginalFilename, &u.Format,
			&u.TotalPosts, &columns, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		if err := json.Unmarshal([]byte(columns), &u.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal columns: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}
	return uploads, nil
}

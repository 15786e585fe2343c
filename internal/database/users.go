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
	"strings"
	"time"
)

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser inserts a user and sets its ID. Emails are stored lowercased.
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`

	err := db.conn.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`
	return scanUser(db.conn.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetUserByID looks a user up by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`
	return scanUser(db.conn.QueryRowContext(ctx, query, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

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
	"github.com/google/uuid"

	"github.com/tomtom215/postpredict/internal/ml"
)

// Prediction is a persisted prediction summary.
type Prediction struct {
	ID                 string                      `json:"id"`
	UserID             int64                       `json:"user_id"`
	UploadID           int64                       `json:"upload_id"`
	AverageLikes       float64                     `json:"average_likes"`
	MaxLikes           float64                     `json:"max_likes"`
	MinLikes           float64                     `json:"min_likes"`
	AverageGrowth      *float64                    `json:"average_growth"`
	MaxGrowth          *float64                    `json:"max_growth"`
	MinGrowth          *float64                    `json:"min_growth"`
	BestPostingHour    *int                        `json:"best_posting_hour"`
	PlatformAnalysis   map[string]ml.PlatformStats `json:"platform_analysis"`
	TotalPostsAnalyzed int                         `json:"total_posts_analyzed"`
	ModelFamily        string                      `json:"model_family"`
	Retrained          bool                        `json:"retrained"`
	CreatedAt          time.Time                   `json:"created_at"`
}

// NewPrediction builds a record from a prediction run.
func NewPrediction(userID, uploadID int64, res *ml.PredictResult) *Prediction {
	s := res.Summary
	p := &Prediction{
		UserID:             userID,
		UploadID:           uploadID,
		AverageLikes:       s.Likes.Average,
		MaxLikes:           s.Likes.Max,
		MinLikes:           s.Likes.Min,
		BestPostingHour:    s.BestPostingHour,
		PlatformAnalysis:   s.PlatformAnalysis,
		TotalPostsAnalyzed: s.TotalPostsAnalyzed,
		ModelFamily:        string(res.ModelFamily),
		Retrained:          res.Retrained,
	}
	if g := s.FollowerGrowth; g != nil {
		avg, hi, lo := g.Average, g.Max, g.Min
		p.AverageGrowth, p.MaxGrowth, p.MinGrowth = &avg, &hi, &lo
	}
	return p
}

const predictionColumns = `id, user_id, upload_id, average_likes, max_likes, min_likes,
	average_growth, max_growth, min_growth, best_posting_hour, platform_analysis,
	total_posts_analyzed, model_family, retrained, created_at`

// SavePrediction inserts p, assigning an ID and timestamp when unset.
func (db *DB) SavePrediction(ctx context.Context, p *Prediction) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.PlatformAnalysis == nil {
		p.PlatformAnalysis = map[string]ml.PlatformStats{}
	}
	analysis, err := json.Marshal(p.PlatformAnalysis)
	if err != nil {
		return fmt.Errorf("marshal platform analysis: %w", err)
	}

	var bestHour sql.NullInt64
	if p.BestPostingHour != nil {
		bestHour = sql.NullInt64{Int64: int64(*p.BestPostingHour), Valid: true}
	}

	query := `INSERT INTO predictions (` + predictionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		p.ID, p.UserID, p.UploadID, p.AverageLikes, p.MaxLikes, p.MinLikes,
		nullFloat(p.AverageGrowth), nullFloat(p.MaxGrowth), nullFloat(p.MinGrowth),
		bestHour, string(analysis), p.TotalPostsAnalyzed, p.ModelFamily, p.Retrained, p.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// GetPrediction returns the user's prediction by ID.
func (db *DB) GetPrediction(ctx context.Context, userID int64, id string) (*Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = ? AND user_id = ?`
	p, err := scanPrediction(db.conn.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPredictions returns the user's predictions newest first.
// A limit <= 0 returns all.
func (db *DB) ListPredictions(ctx context.Context, userID int64, limit int) ([]Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = ? ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer closeQuietly(rows)

	predictions := []Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (*Prediction, error) {
	var (
		p                          Prediction
		avgGrowth, maxGrowth, minG sql.NullFloat64
		bestHour                   sql.NullInt64
		analysis                   string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.UploadID, &p.AverageLikes, &p.MaxLikes, &p.MinLikes,
		&avgGrowth, &maxGrowth, &minG, &bestHour, &analysis,
		&p.TotalPostsAnalyzed, &p.ModelFamily, &p.Retrained, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	p.AverageGrowth = floatPtr(avgGrowth)
	p.MaxGrowth = floatPtr(maxGrowth)
	p.MinGrowth = floatPtr(minG)
	if bestHour.Valid {
		h := int(bestHour.Int64)
		p.BestPostingHour = &h
	}
	if err := json.Unmarshal([]byte(analysis), &p.PlatformAnalysis); err != nil {
		return nil, fmt.Errorf("unmarshal platform analysis: %w", err)
	}
	return &p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

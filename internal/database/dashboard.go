// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package database

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// RecentLimit is the number of recent predictions and uploads on a dashboard.
const RecentLimit = 5

// Dashboard summarizes a user's prediction history.
type Dashboard struct {
	TotalPredictions  int            `json:"total_predictions"`
	AvgLikes          float64        `json:"avg_likes"`
	BestTime          *int           `json:"best_time"`
	PlatformsCount    int            `json:"platforms_count"`
	PlatformBreakdown map[string]int `json:"platform_breakdown"`
	RecentPredictions []Prediction   `json:"recent_predictions"`
	RecentUploads     []Upload       `json:"recent_uploads"`
}

// GetDashboard builds the dashboard for a user. AvgLikes is the mean of
// each prediction's average likes, BestTime comes from the latest
// prediction, and PlatformBreakdown counts predictions per platform.
func (db *DB) GetDashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	predictions, err := db.ListPredictions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("dashboard predictions: %w", err)
	}
	uploads, err := db.ListUploads(ctx, userID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard uploads: %w", err)
	}

	d := &Dashboard{
		TotalPredictions:  len(predictions),
		PlatformBreakdown: map[string]int{},
		RecentUploads:     uploads,
	}

	if len(predictions) > 0 {
		likes := make([]float64, len(predictions))
		for i, p := range predictions {
			likes[i] = p.AverageLikes
			for platform := range p.PlatformAnalysis {
				d.PlatformBreakdown[platform]++
			}
		}
		d.AvgLikes = stat.Mean(likes, nil)
		d.BestTime = predictions[0].BestPostingHour
	}
	d.PlatformsCount = len(d.PlatformBreakdown)

	recent := min(RecentLimit, len(predictions))
	d.RecentPredictions = predictions[:recent]
	return d, nil
}

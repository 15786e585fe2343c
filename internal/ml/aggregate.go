// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/postpredict/internal/features"
)

// Stats are the mean, maximum and minimum of a prediction vector.
type Stats struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// PlatformStats summarizes predictions for one raw platform value.
type PlatformStats struct {
	AvgPredictedLikes float64 `json:"avg_predicted_likes"`
	PostCount         int     `json:"post_count"`
}

// Summary is the aggregated result of one prediction run.
type Summary struct {
	Likes              Stats                    `json:"likes"`
	FollowerGrowth     *Stats                   `json:"follower_growth,omitempty"`
	BestPostingHour    *int                     `json:"best_posting_hour,omitempty"`
	PlatformAnalysis   map[string]PlatformStats `json:"platform_analysis"`
	TotalPostsAnalyzed int                      `json:"total_posts_analyzed"`
}

// Aggregate reduces per-row predictions over ds into a Summary. growth may
// be nil, in which case Summary.FollowerGrowth is nil.
func Aggregate(ds *features.Dataset, likes, growth []float64) Summary {
	s := Summary{
		Likes:              stats(likes),
		PlatformAnalysis:   make(map[string]PlatformStats),
		TotalPostsAnalyzed: len(likes),
	}
	if growth != nil {
		g := stats(growth)
		s.FollowerGrowth = &g
	}
	s.BestPostingHour = bestHour(ds, likes)

	if ds.Has(features.ColPlatform) {
		sums := make(map[string]float64)
		for i, v := range likes {
			p, ok := ds.String(features.ColPlatform, i)
			if !ok {
				continue
			}
			sums[p] += v
			ps := s.PlatformAnalysis[p]
			ps.PostCount++
			s.PlatformAnalysis[p] = ps
		}
		for p, ps := range s.PlatformAnalysis {
			ps.AvgPredictedLikes = sums[p] / float64(ps.PostCount)
			s.PlatformAnalysis[p] = ps
		}
	}

	return s
}

func stats(v []float64) Stats {
	if len(v) == 0 {
		return Stats{}
	}
	return Stats{
		Average: stat.Mean(v, nil),
		Max:     floats.Max(v),
		Min:     floats.Min(v),
	}
}

// bestHour returns the hour with the highest mean prediction. Ties go to
// the earliest hour.
func bestHour(ds *features.Dataset, likes []float64) *int {
	col := ""
	for _, c := range []string{features.ColPostingHour, features.ColHour} {
		if ds.Has(c) {
			col = c
			break
		}
	}
	if col == "" {
		return nil
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, v := range likes {
		h, ok := ds.Float(col, i)
		if !ok || math.IsInf(h, 0) {
			continue
		}
		hour := int(h)
		sums[hour] += v
		counts[hour]++
	}
	if len(counts) == 0 {
		return nil
	}

	hours := make([]int, 0, len(counts))
	for h := range counts {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	best := hours[0]
	bestMean := sums[best] / float64(counts[best])
	for _, h := range hours[1:] {
		if m := sums[h] / float64(counts[h]); m > bestMean {
			best, bestMean = h, m
		}
	}
	return &best
}

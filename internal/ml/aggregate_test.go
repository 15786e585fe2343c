// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"testing"

	"github.com/tomtom215/postpredict/internal/features"
)

func TestAggregate(t *testing.T) {
	ds, err := features.FromColumns(
		[]string{"posting_hour", "platform"},
		[][]any{
			{9.0, 9.0, 14.0, nil, 20.0},
			{"instagram", "facebook", "instagram", nil, "Instagram"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	likes := []float64{100, 200, 120, 500, 90}

	s := Aggregate(ds, likes, nil)

	if s.Likes != (Stats{Average: 202, Max: 500, Min: 90}) {
		t.Errorf("likes stats = %+v", s.Likes)
	}
	if s.FollowerGrowth != nil {
		t.Errorf("growth stats = %+v, want nil", s.FollowerGrowth)
	}
	if s.BestPostingHour == nil || *s.BestPostingHour != 9 {
		t.Errorf("best hour = %v, want 9", s.BestPostingHour)
	}
	if s.TotalPostsAnalyzed != 5 {
		t.Errorf("total = %d, want 5", s.TotalPostsAnalyzed)
	}

	want := map[string]PlatformStats{
		"instagram": {AvgPredictedLikes: 110, PostCount: 2},
		"facebook":  {AvgPredictedLikes: 200, PostCount: 1},
		"Instagram": {AvgPredictedLikes: 90, PostCount: 1},
	}
	if len(s.PlatformAnalysis) != len(want) {
		t.Fatalf("platform analysis = %+v", s.PlatformAnalysis)
	}
	for p, w := range want {
		if s.PlatformAnalysis[p] != w {
			t.Errorf("platform %s = %+v, want %+v", p, s.PlatformAnalysis[p], w)
		}
	}
}

func TestAggregateBestHourTie(t *testing.T) {
	ds, err := features.FromColumns([]string{"hour"}, [][]any{{18.0, 7.0, 12.0}})
	if err != nil {
		t.Fatal(err)
	}

	s := Aggregate(ds, []float64{50, 50, 10}, []float64{1, 2, 3})

	if s.BestPostingHour == nil || *s.BestPostingHour != 7 {
		t.Errorf("best hour = %v, want 7", s.BestPostingHour)
	}
	if s.FollowerGrowth == nil || *s.FollowerGrowth != (Stats{Average: 2, Max: 3, Min: 1}) {
		t.Errorf("growth stats = %+v", s.FollowerGrowth)
	}
}

func TestAggregateWithoutOptionalColumns(t *testing.T) {
	ds, err := features.FromColumns([]string{"likes"}, [][]any{{1.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}

	s := Aggregate(ds, []float64{3, 4}, nil)

	if s.BestPostingHour != nil {
		t.Errorf("best hour = %v, want nil", *s.BestPostingHour)
	}
	if len(s.PlatformAnalysis) != 0 {
		t.Errorf("platform analysis = %+v, want empty", s.PlatformAnalysis)
	}
}

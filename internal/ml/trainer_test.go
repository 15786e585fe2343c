// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpredict/internal/features"
)

// engineeredPosts builds n engineered rows, one per day of January 2024.
// Followers grow by 15 a day when growing is true.
func engineeredPosts(t *testing.T, n int, growing bool) *features.Dataset {
	t.Helper()

	platforms := []string{"instagram", "facebook", "linkedin"}
	dates := make([]any, n)
	platform := make([]any, n)
	likes := make([]any, n)
	followers := make([]any, n)
	for i := 0; i < n; i++ {
		hour := (i * 5) % 24
		dates[i] = fmt.Sprintf("2024-01-%02d %02d:00", i+1, hour)
		platform[i] = platforms[i%3]
		likes[i] = float64(100 + 10*hour + 20*(i%3))
		f := 1000.0
		if growing {
			f += float64(15 * i)
		}
		followers[i] = f
	}

	raw, err := features.FromColumns(
		[]string{"date", "platform", "likes", "followers"},
		[][]any{dates, platform, likes, followers},
	)
	if err != nil {
		t.Fatalf("FromColumns: %v", err)
	}
	return features.NewEngineer(features.DefaultConfig()).Apply(raw)
}

func testTrainer() *Trainer {
	cfg := DefaultTrainerConfig()
	cfg.Forest.Trees = 10
	return NewTrainer(cfg, zerolog.Nop())
}

func TestTrainerErrors(t *testing.T) {
	likesOnly, err := features.FromColumns([]string{"likes"}, [][]any{{1.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	noLikes, err := features.FromColumns([]string{"hour"}, [][]any{{1.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	empty, err := features.FromColumns([]string{"likes", "hour"}, [][]any{{}, {}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ds      *features.Dataset
		wantErr error
	}{
		{"missing likes", noLikes, ErrMissingTargetColumn},
		{"no features", likesOnly, features.ErrEmptyFeatureSet},
		{"no rows", empty, ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testTrainer().Train(context.Background(), tt.ds, FamilyLinear)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Train() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrainerBothFamilies(t *testing.T) {
	ds := engineeredPosts(t, 24, true)

	result, err := testTrainer().Train(context.Background(), ds, FamilyBoth)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	for _, key := range []string{"likes_linear", "likes_random_forest", "follower_growth_linear", "follower_growth_random_forest"} {
		m, ok := result.Models[key]
		if !ok {
			t.Errorf("missing model %s", key)
			continue
		}
		if _, ok := result.Metrics[key]; !ok {
			t.Errorf("missing metrics for %s", key)
		}
		if len(m.Features) != len(result.Features) {
			t.Errorf("%s features = %v, want %v", key, m.Features, result.Features)
		}
	}

	// ceil(0.2 * 24) = 5
	if result.EvalRows != 5 || result.TrainRows != 19 {
		t.Errorf("split = %d/%d, want 19/5", result.TrainRows, result.EvalRows)
	}
}

func TestTrainerSkipsZeroGrowth(t *testing.T) {
	ds := engineeredPosts(t, 12, false)

	result, err := testTrainer().Train(context.Background(), ds, FamilyRandomForest)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if PreferredModel(result.Models, TargetFollowerGrowth) != nil {
		t.Error("growth model trained on all-zero growth")
	}
	if PreferredModel(result.Models, TargetLikes) == nil {
		t.Error("likes model missing")
	}
}

func TestTrainerSmallDatasetEvaluatesOnTraining(t *testing.T) {
	ds := engineeredPosts(t, 4, true)

	result, err := testTrainer().Train(context.Background(), ds, FamilyLinear)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if result.TrainRows != 4 || result.EvalRows != 4 {
		t.Errorf("split = %d/%d, want 4/4", result.TrainRows, result.EvalRows)
	}
}

func TestTrainerDeterministic(t *testing.T) {
	ds := engineeredPosts(t, 20, true)

	a, err := testTrainer().Train(context.Background(), ds, FamilyRandomForest)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := testTrainer().Train(context.Background(), ds, FamilyRandomForest)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if a.Metrics["likes_random_forest"] != b.Metrics["likes_random_forest"] {
		t.Errorf("metrics differ between runs: %+v vs %+v", a.Metrics["likes_random_forest"], b.Metrics["likes_random_forest"])
	}
}

func TestGrowthSignalFromFollowers(t *testing.T) {
	ds, err := features.FromColumns([]string{"followers"}, [][]any{{100.0, 130.0, 125.0}})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := growthSignal(ds)
	if !ok {
		t.Fatal("expected growth signal")
	}
	want := []float64{0, 30, -5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("growth = %v, want %v", got, want)
			break
		}
	}

	single, err := features.FromColumns([]string{"followers"}, [][]any{{100.0}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := growthSignal(single); ok {
		t.Error("single row should have no growth signal")
	}
}

func TestPreferredModel(t *testing.T) {
	lin := &Model{Target: TargetLikes, Family: FamilyLinear}
	rf := &Model{Target: TargetLikes, Family: FamilyRandomForest}

	models := map[string]*Model{lin.Key(): lin}
	if got := PreferredModel(models, TargetLikes); got != lin {
		t.Errorf("PreferredModel = %v, want linear", got)
	}

	models[rf.Key()] = rf
	if got := PreferredModel(models, TargetLikes); got != rf {
		t.Errorf("PreferredModel = %v, want random_forest", got)
	}

	if got := PreferredModel(models, TargetFollowerGrowth); got != nil {
		t.Errorf("PreferredModel = %v, want nil", got)
	}
}

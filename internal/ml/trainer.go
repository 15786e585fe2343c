// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/metrics"
)

// TrainerConfig contains configuration for model training.
type TrainerConfig struct {
	// Forest configures the random_forest family.
	Forest ForestConfig

	// TestFraction is the share of rows held out for evaluation.
	TestFraction float64

	// MinSplitRows is the row count at or below which no hold-out is made
	// and metrics are computed on the training rows.
	MinSplitRows int

	// Seed drives the train/evaluation split.
	Seed int64
}

// DefaultTrainerConfig returns the standard training configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Forest:       DefaultForestConfig(),
		TestFraction: 0.2,
		MinSplitRows: 5,
		Seed:         42,
	}
}

// TrainResult holds the models and evaluation scores from one Train call.
// Both maps are keyed by Model.Key.
type TrainResult struct {
	Models    map[string]*Model
	Metrics   map[string]Metrics
	Features  []string
	TrainRows int
	EvalRows  int
}

// Trainer fits likes and follower-growth models on engineered datasets.
type Trainer struct {
	cfg    TrainerConfig
	logger zerolog.Logger
}

// NewTrainer creates a Trainer. Zero-valued config fields take defaults.
//
//nolint:gocritic // config is copied so defaults can be applied locally
func NewTrainer(cfg TrainerConfig, logger zerolog.Logger) *Trainer {
	def := DefaultTrainerConfig()
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = def.TestFraction
	}
	if cfg.MinSplitRows <= 0 {
		cfg.MinSplitRows = def.MinSplitRows
	}

	return &Trainer{
		cfg:    cfg,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// Train fits family models for both targets on an engineered dataset.
// The growth model is skipped when the training partition has no non-zero
// growth value.
func (t *Trainer) Train(ctx context.Context, ds *features.Dataset, family Family) (*TrainResult, error) {
	start := time.Now()
	result, err := t.train(ctx, ds, family)
	metrics.RecordTraining(string(family), time.Since(start), err)
	return result, err
}

func (t *Trainer) train(ctx context.Context, ds *features.Dataset, family Family) (*TrainResult, error) {
	if !ds.Has(features.ColLikes) {
		return nil, ErrMissingTargetColumn
	}

	names, err := features.Select(ds)
	if err != nil {
		return nil, err
	}

	n := ds.Len()
	if n == 0 {
		return nil, ErrNoRows
	}

	x, err := features.BuildMatrix(ds, names)
	if err != nil {
		return nil, err
	}

	trainIdx, evalIdx := t.split(n)
	xTrain, xEval := x.Subset(trainIdx), x.Subset(evalIdx)

	result := &TrainResult{
		Models:    make(map[string]*Model),
		Metrics:   make(map[string]Metrics),
		Features:  names,
		TrainRows: len(trainIdx),
		EvalRows:  len(evalIdx),
	}

	likes := ds.Floats(features.ColLikes)
	if err := t.fitTarget(ctx, result, TargetLikes, family, xTrain, xEval, pick(likes, trainIdx), pick(likes, evalIdx)); err != nil {
		return nil, err
	}

	growth, ok := growthSignal(ds)
	if !ok {
		t.logger.Debug().Msg("no follower signal, skipping growth model")
		return result, nil
	}
	growthTrain := pick(growth, trainIdx)
	if !anyNonZero(growthTrain) {
		t.logger.Debug().Msg("follower growth is zero in training rows, skipping growth model")
		return result, nil
	}
	if err := t.fitTarget(ctx, result, TargetFollowerGrowth, family, xTrain, xEval, growthTrain, pick(growth, evalIdx)); err != nil {
		return nil, err
	}

	return result, nil
}

func (t *Trainer) fitTarget(ctx context.Context, result *TrainResult, target Target, family Family, xTrain, xEval *features.Matrix, yTrain, yEval []float64) error {
	for _, f := range family.families() {
		m := &Model{
			Target:    target,
			Family:    f,
			Features:  append([]string(nil), xTrain.Names...),
			TrainedAt: time.Now().UTC(),
			TrainRows: len(yTrain),
		}

		switch f {
		case FamilyLinear:
			lr := &LinearRegressor{}
			if err := lr.Fit(xTrain.Rows, yTrain); err != nil {
				return fmt.Errorf("train %s: %w", m.Key(), err)
			}
			m.Linear = lr
		case FamilyRandomForest:
			forest, err := FitForest(ctx, t.cfg.Forest, xTrain.Rows, yTrain)
			if err != nil {
				return fmt.Errorf("train %s: %w", m.Key(), err)
			}
			m.Forest = forest
		default:
			return fmt.Errorf("unknown model family %q", f)
		}

		pred, err := m.Predict(xEval)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", m.Key(), err)
		}
		score := Evaluate(yEval, pred)

		result.Models[m.Key()] = m
		result.Metrics[m.Key()] = score
		metrics.RecordModelTrained(string(target), string(f))

		t.logger.Info().
			Str("model", m.Key()).
			Int("train_rows", len(yTrain)).
			Int("eval_rows", score.EvalRows).
			Float64("mae", score.MAE).
			Float64("rmse", score.RMSE).
			Float64("r2", score.R2).
			Msg("model trained")
	}
	return nil
}

// split returns training and evaluation row indices. Small datasets are
// evaluated on their training rows.
func (t *Trainer) split(n int) (trainIdx, evalIdx []int) {
	if n <= t.cfg.MinSplitRows {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, all
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed)) //nolint:gosec // deterministic split
	perm := rng.Perm(n)
	nEval := int(math.Ceil(t.cfg.TestFraction * float64(n)))
	return perm[nEval:], perm[:nEval]
}

// growthSignal returns follower_growth, or a first difference of the
// followers column when growth has not been engineered.
func growthSignal(ds *features.Dataset) ([]float64, bool) {
	if ds.Has(features.ColFollowerGrowth) {
		return ds.Floats(features.ColFollowerGrowth), true
	}
	if ds.Len() < 2 {
		return nil, false
	}
	for _, col := range []string{features.ColFollowersPost, features.ColFollowers} {
		if !ds.Has(col) {
			continue
		}
		followers := ds.Floats(col)
		growth := make([]float64, len(followers))
		for i := 1; i < len(followers); i++ {
			growth[i] = followers[i] - followers[i-1]
		}
		return growth, true
	}
	return nil, false
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func anyNonZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return true
		}
	}
	return false
}

// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/metrics"
)

// Retrain reasons, used as the metrics label.
const (
	ReasonUnavailable     = "unavailable"
	ReasonFeatureMismatch = "feature_mismatch"
)

// ArtifactStore persists one model per target key. Deleting an absent key
// is not an error.
type ArtifactStore interface {
	Load(ctx context.Context, key string) (*Model, error)
	Save(ctx context.Context, key string, m *Model) error
	Delete(ctx context.Context, key string) error
}

// PredictResult is the outcome of PredictAndAggregate.
type PredictResult struct {
	Summary       Summary
	ModelFamily   Family
	Features      []string
	Retrained     bool
	RetrainReason string
}

// Predictor scores engineered datasets with stored models, retraining on
// the request's data when the stored likes model cannot be used.
type Predictor struct {
	store   ArtifactStore
	trainer *Trainer
	family  Family
	logger  zerolog.Logger
}

// NewPredictor creates a Predictor. family is used for fallback retrains.
func NewPredictor(store ArtifactStore, trainer *Trainer, family Family, logger zerolog.Logger) *Predictor {
	if family == "" {
		family = FamilyRandomForest
	}
	return &Predictor{
		store:   store,
		trainer: trainer,
		family:  family,
		logger:  logger.With().Str("component", "predictor").Logger(),
	}
}

// PredictAndAggregate predicts likes and, when a usable growth model
// exists, follower growth for every row of ds and aggregates the results.
func (p *Predictor) PredictAndAggregate(ctx context.Context, ds *features.Dataset) (*PredictResult, error) {
	names, err := features.Select(ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureMismatch, err)
	}

	result := &PredictResult{Features: names}

	likesModel, likes, err := p.scoreStored(ctx, TargetLikes, ds, names)
	var trained *TrainResult
	if err != nil {
		reason := ReasonUnavailable
		if errors.Is(err, ErrFeatureMismatch) {
			reason = ReasonFeatureMismatch
		}
		p.logger.Warn().Err(err).Str("target", string(TargetLikes)).Str("reason", reason).
			Msg("stored model unusable, retraining on current dataset")
		metrics.RecordRetrain(string(TargetLikes), reason)

		trained, err = p.trainer.Train(ctx, ds, p.family)
		if err != nil {
			return nil, fmt.Errorf("retrain: %w", err)
		}
		if err := p.persist(ctx, trained); err != nil {
			p.logger.Warn().Err(err).Msg("failed to save retrained models")
		}

		likesModel = PreferredModel(trained.Models, TargetLikes)
		if likesModel == nil {
			return nil, fmt.Errorf("%w: retrain produced no likes model", ErrModelUnavailable)
		}
		likes, err = score(likesModel, ds, names)
		if err != nil {
			return nil, fmt.Errorf("score retrained model: %w", err)
		}
		result.Retrained = true
		result.RetrainReason = reason
	}
	result.ModelFamily = likesModel.Family

	growth := p.growthPredictions(ctx, ds, names, trained)
	result.Summary = Aggregate(ds, likes, growth)

	metrics.RecordPrediction(len(likes))
	return result, nil
}

// Train fits models on ds and saves the preferred model for each target.
func (p *Predictor) Train(ctx context.Context, ds *features.Dataset, family Family) (*TrainResult, error) {
	result, err := p.trainer.Train(ctx, ds, family)
	if err != nil {
		return nil, err
	}
	if err := p.persist(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Predictor) growthPredictions(ctx context.Context, ds *features.Dataset, names []string, trained *TrainResult) []float64 {
	if trained != nil {
		m := PreferredModel(trained.Models, TargetFollowerGrowth)
		if m == nil {
			return nil
		}
		growth, err := score(m, ds, names)
		if err != nil {
			p.logger.Debug().Err(err).Msg("retrained growth model unusable")
			return nil
		}
		return growth
	}

	_, growth, err := p.scoreStored(ctx, TargetFollowerGrowth, ds, names)
	if err != nil {
		p.logger.Debug().Err(err).Msg("follower growth unavailable")
		return nil
	}
	return growth
}

func (p *Predictor) scoreStored(ctx context.Context, target Target, ds *features.Dataset, names []string) (*Model, []float64, error) {
	m, err := p.store.Load(ctx, string(target))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if m == nil {
		return nil, nil, ErrModelUnavailable
	}
	pred, err := score(m, ds, names)
	if err != nil {
		return nil, nil, err
	}
	return m, pred, nil
}

// score applies m to ds. The selection for ds must equal the model's
// training features.
func score(m *Model, ds *features.Dataset, names []string) ([]float64, error) {
	if !slices.Equal(names, m.Features) {
		return nil, fmt.Errorf("%w: model trained on %v, dataset provides %v", ErrFeatureMismatch, m.Features, names)
	}
	x, err := features.BuildMatrix(ds, m.Features)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureMismatch, err)
	}
	pred, err := m.Predict(x)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrFeatureMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFeatureMismatch, err)
	}
	return pred, nil
}

// persist saves the preferred model per target. A target the run produced
// no model for has its stored artifact removed, so a model fit on other
// data is never paired with this run's feature set.
func (p *Predictor) persist(ctx context.Context, result *TrainResult) error {
	for _, target := range []Target{TargetLikes, TargetFollowerGrowth} {
		m := PreferredModel(result.Models, target)
		if m == nil {
			if err := p.store.Delete(ctx, string(target)); err != nil {
				return fmt.Errorf("delete stale %s model: %w", target, err)
			}
			continue
		}
		if err := p.store.Save(ctx, string(target), m); err != nil {
			return fmt.Errorf("save %s model: %w", target, err)
		}
		p.logger.Debug().Str("target", string(target)).Str("family", string(m.Family)).Msg("model saved")
	}
	return nil
}

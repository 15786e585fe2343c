// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package ml trains and applies the likes and follower-growth regressors.
//
// # Models
//
// Two families are available: ordinary least squares (linear) and a bagged
// forest of CART regression trees (random_forest). Every Model carries the
// ordered feature names it was trained on; scoring with a matrix whose
// columns differ is an ErrFeatureMismatch.
//
// # Reuse
//
// The Predictor reads artifacts through an ArtifactStore and retrains on the
// current dataset when an artifact is missing, corrupt, or was trained on a
// different feature set. Retrains are logged and counted in
// postpredict_model_retrains_total.
package ml

import (
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/postpredict/internal/features"
)

// Target names a regression target.
type Target string

const (
	TargetLikes          Target = "likes"
	TargetFollowerGrowth Target = "follower_growth"
)

// Family names a regressor family.
type Family string

const (
	FamilyLinear       Family = "linear"
	FamilyRandomForest Family = "random_forest"
	FamilyBoth         Family = "both"
)

// ParseFamily validates a family name. The empty string selects random_forest.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case "":
		return FamilyRandomForest, nil
	case FamilyLinear, FamilyRandomForest, FamilyBoth:
		return Family(s), nil
	default:
		return "", fmt.Errorf("unknown model family %q", s)
	}
}

// families expands FamilyBoth into its members.
func (f Family) families() []Family {
	if f == FamilyBoth {
		return []Family{FamilyLinear, FamilyRandomForest}
	}
	return []Family{f}
}

// Model is a trained regressor together with the feature names it expects.
// Exactly one of Linear and Forest is set.
type Model struct {
	Target    Target
	Family    Family
	Features  []string
	Linear    *LinearRegressor
	Forest    *Forest
	TrainedAt time.Time
	TrainRows int
}

// Key returns the identifier used for metrics maps, e.g. "likes_random_forest".
func (m *Model) Key() string {
	return string(m.Target) + "_" + string(m.Family)
}

// Predict scores every row of x. The matrix columns must equal m.Features.
func (m *Model) Predict(x *features.Matrix) ([]float64, error) {
	if !slices.Equal(x.Names, m.Features) {
		return nil, fmt.Errorf("%w: model expects %v, got %v", ErrFeatureMismatch, m.Features, x.Names)
	}

	switch {
	case m.Forest != nil:
		return m.Forest.Predict(x.Rows)
	case m.Linear != nil:
		return m.Linear.Predict(x.Rows)
	default:
		return nil, fmt.Errorf("%w: model %s has no regressor", ErrModelUnavailable, m.Key())
	}
}

// PreferredModel returns the random_forest model for target if present,
// else the linear one, else nil.
func PreferredModel(models map[string]*Model, target Target) *Model {
	for _, f := range []Family{FamilyRandomForest, FamilyLinear} {
		if m, ok := models[string(target)+"_"+string(f)]; ok {
			return m
		}
	}
	return nil
}

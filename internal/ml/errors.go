// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import "errors"

var (
	// ErrMissingTargetColumn means the dataset has no likes column.
	ErrMissingTargetColumn = errors.New("missing required 'likes' column")

	// ErrFeatureMismatch means a model's feature names differ from the
	// columns available for scoring.
	ErrFeatureMismatch = errors.New("feature mismatch")

	// ErrModelUnavailable means no usable artifact could be loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrNoRows means the dataset has no rows to train on.
	ErrNoRows = errors.New("dataset has no rows")
)

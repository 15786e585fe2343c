// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics are regression scores on an evaluation partition.
type Metrics struct {
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	R2       float64 `json:"r2"`
	EvalRows int     `json:"eval_rows"`
}

// Evaluate scores predictions against actual values. With zero variance in
// actual, R2 is 1 for an exact fit and 0 otherwise.
func Evaluate(actual, predicted []float64) Metrics {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return Metrics{}
	}

	l1 := floats.Distance(actual, predicted, 1)
	l2 := floats.Distance(actual, predicted, 2)

	var r2 float64
	switch {
	case floats.Min(actual) != floats.Max(actual):
		r2 = stat.RSquaredFrom(predicted, actual, nil)
	case l2 == 0:
		r2 = 1
	}

	return Metrics{
		MAE:      l1 / float64(n),
		RMSE:     l2 / math.Sqrt(float64(n)),
		R2:       r2,
		EvalRows: n,
	}
}

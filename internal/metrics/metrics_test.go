// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRetrain(t *testing.T) {
	before := testutil.ToFloat64(ModelRetrains.WithLabelValues("likes", "unavailable"))

	RecordRetrain("likes", "unavailable")
	RecordRetrain("likes", "unavailable")

	after := testutil.ToFloat64(ModelRetrains.WithLabelValues("likes", "unavailable"))
	if after-before != 2 {
		t.Errorf("retrain counter delta = %v, want 2", after-before)
	}
}

func TestRecordTraining(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError bool
	}{
		{"success", nil, false},
		{"failure", errors.New("no valid features found in data"), true},
		{"long failure is truncated", errors.New("this is a very long error message that exceeds fifty characters and should be truncated"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(TrainingErrors)
			RecordTraining("linear", 10*time.Millisecond, tt.err)
			after := testutil.CollectAndCount(TrainingErrors)

			if tt.wantError && after < before {
				t.Errorf("expected error series to be recorded")
			}
			if !tt.wantError && after != before {
				t.Errorf("unexpected error series recorded: %d -> %d", before, after)
			}
		})
	}
}

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal)
	RecordPrediction(10)
	if got := testutil.ToFloat64(PredictionsTotal) - before; got != 1 {
		t.Errorf("predictions delta = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/predict", "200"))
	RecordAPIRequest("POST", "/api/v1/predict", "200", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/predict", "200"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postpredict_training_duration_seconds",
			Help:    "Duration of a training run in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"family"},
	)

	ModelsTrained = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpredict_models_trained_total",
			Help: "Total number of fitted models",
		},
		[]string{"target", "family"},
	)

	TrainingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpredict_training_errors_total",
			Help: "Total number of failed training runs",
		},
		[]string{"reason"},
	)

	// ModelRetrains counts fallback retrains triggered at inference time.
	// reason is "unavailable" or "feature_mismatch".
	ModelRetrains = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpredict_model_retrains_total",
			Help: "Total number of retrains triggered by an unusable stored model",
		},
		[]string{"target", "reason"},
	)

	// Prediction Metrics
	PredictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpredict_predictions_total",
			Help: "Total number of prediction runs",
		},
	)

	PredictionRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postpredict_prediction_rows",
			Help:    "Number of rows scored per prediction run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpredict_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postpredict_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordTraining records a training run for the given family.
func RecordTraining(family string, duration time.Duration, err error) {
	TrainingDuration.WithLabelValues(family).Observe(duration.Seconds())
	if err != nil {
		reason := err.Error()
		if len(reason) > 50 {
			reason = reason[:50]
		}
		TrainingErrors.WithLabelValues(reason).Inc()
	}
}

// RecordModelTrained increments the fitted-model counter.
func RecordModelTrained(target, family string) {
	ModelsTrained.WithLabelValues(target, family).Inc()
}

// RecordRetrain increments the retrain fallback counter.
func RecordRetrain(target, reason string) {
	ModelRetrains.WithLabelValues(target, reason).Inc()
}

// RecordPrediction records one prediction run over rows rows.
func RecordPrediction(rows int) {
	PredictionsTotal.Inc()
	PredictionRows.Observe(float64(rows))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

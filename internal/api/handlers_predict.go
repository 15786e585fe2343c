// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/ingest"
	"github.com/tomtom215/postpredict/internal/logging"
	"github.com/tomtom215/postpredict/internal/ml"
	"github.com/tomtom215/postpredict/internal/ml/storage"
)

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	PredictionID  string     `json:"prediction_id"`
	UploadID      int64      `json:"upload_id"`
	Summary       ml.Summary `json:"summary"`
	ModelFamily   ml.Family  `json:"model_family"`
	Features      []string   `json:"features"`
	Retrained     bool       `json:"retrained"`
	RetrainReason string     `json:"retrain_reason,omitempty"`
}

// TrainResponse is returned by POST /train.
type TrainResponse struct {
	UploadID  int64                 `json:"upload_id"`
	Models    []string              `json:"models"`
	Metrics   map[string]ml.Metrics `json:"metrics"`
	Features  []string              `json:"features"`
	TrainRows int                   `json:"train_rows"`
	EvalRows  int                   `json:"eval_rows"`
}

// Predict runs the pipeline over a stored upload and persists the summary.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())

	ds, ok := h.loadEngineered(rw, r, userID, req.UploadID)
	if !ok {
		return
	}

	result, err := h.predictor.PredictAndAggregate(r.Context(), ds)
	if err != nil {
		h.modelError(rw, err)
		return
	}

	record := database.NewPrediction(userID, req.UploadID, result)
	if err := h.store.SavePrediction(r.Context(), record); err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("prediction_id", record.ID).
		Int64("upload_id", req.UploadID).
		Bool("retrained", result.Retrained).
		Msg("prediction stored")

	rw.Success(PredictResponse{
		PredictionID:  record.ID,
		UploadID:      req.UploadID,
		Summary:       result.Summary,
		ModelFamily:   result.ModelFamily,
		Features:      result.Features,
		Retrained:     result.Retrained,
		RetrainReason: result.RetrainReason,
	})
}

// Train fits the requested model family on a stored upload and persists the
// preferred models.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	family := h.defaultFamily
	if req.ModelType != "" {
		parsed, err := ml.ParseFamily(req.ModelType)
		if err != nil {
			rw.ValidationError(err.Error(), nil)
			return
		}
		family = parsed
	}

	ds, ok := h.loadEngineered(rw, r, auth.UserIDFromContext(r.Context()), req.UploadID)
	if !ok {
		return
	}

	result, err := h.predictor.Train(r.Context(), ds, family)
	if err != nil {
		h.modelError(rw, err)
		return
	}

	keys := make([]string, 0, len(result.Models))
	for key := range result.Models {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rw.Success(TrainResponse{
		UploadID:  req.UploadID,
		Models:    keys,
		Metrics:   result.Metrics,
		Features:  result.Features,
		TrainRows: result.TrainRows,
		EvalRows:  result.EvalRows,
	})
}

// ListPredictions returns the user's predictions, newest first.
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	predictions, err := h.store.ListPredictions(r.Context(), auth.UserIDFromContext(r.Context()), 0)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.SuccessList(predictions, len(predictions))
}

// ListModels returns metadata for the stored model artifacts. Without a
// catalog the list is empty.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.models == nil {
		rw.SuccessList([]storage.Metadata{}, 0)
		return
	}
	models, err := h.models.List(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.SuccessList(models, len(models))
}

// GetPrediction returns one of the user's predictions.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p, err := h.store.GetPrediction(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Prediction not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(p)
}

// Dashboard returns the user's prediction history summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	d, err := h.store.GetDashboard(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(d)
}

// loadEngineered fetches an upload owned by userID, parses it and applies
// feature engineering. It writes the error response when it returns false.
func (h *Handler) loadEngineered(rw *ResponseWriter, r *http.Request, userID, uploadID int64) (*features.Dataset, bool) {
	upload, err := h.store.GetUpload(r.Context(), userID, uploadID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Upload not found")
			return nil, false
		}
		rw.InternalError(err)
		return nil, false
	}

	raw, err := parseUpload(upload.Format, upload.Content)
	if err != nil {
		rw.BadRequest(err.Error())
		return nil, false
	}
	return h.engineer.Apply(raw), true
}

// modelError maps training and prediction errors to responses.
func (h *Handler) modelError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, features.ErrEmptyFeatureSet),
		errors.Is(err, ml.ErrMissingTargetColumn),
		errors.Is(err, ml.ErrNoRows),
		errors.Is(err, ingest.ErrEmptyInput):
		rw.ValidationError(err.Error(), nil)
	default:
		rw.InternalError(err)
	}
}

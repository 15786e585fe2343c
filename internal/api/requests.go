// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/postpredict/internal/validation"
)

// maxJSONBodyBytes bounds request bodies other than uploads.
const maxJSONBodyBytes = 1 << 20

// RegisterRequest creates an account. bcrypt ignores bytes past 72.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PredictRequest runs the prediction pipeline over a stored upload.
type PredictRequest struct {
	UploadID int64 `json:"upload_id" validate:"gt=0"`
}

// TrainRequest trains and persists models on a stored upload.
// An empty ModelType trains the default family.
type TrainRequest struct {
	UploadID  int64  `json:"upload_id" validate:"gt=0"`
	ModelType string `json:"model_type" validate:"omitempty,oneof=linear random_forest both"`
}

var errBodyRequired = errors.New("request body is required")

// decodeAndValidate decodes a JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	rw := NewResponseWriter(w, r)

	if err := decodeJSON(w, r, dst); err != nil {
		rw.BadRequest(err.Error())
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr.Error(), verr.Fields)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

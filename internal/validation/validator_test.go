// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package validation

import (
	"strings"
	"testing"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type trainRequest struct {
	UploadID  int64  `json:"upload_id" validate:"gt=0"`
	ModelType string `json:"model_type" validate:"omitempty,oneof=linear random_forest both"`
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid register",
			input: &registerRequest{Email: "a@b.io", Name: "A", Password: "longenough"},
		},
		{
			name:       "short password",
			input:      &registerRequest{Email: "a@b.io", Name: "A", Password: "short"},
			wantFields: []string{"password"},
			wantMsg:    "password must be at least 8 characters",
		},
		{
			name:       "missing everything",
			input:      &registerRequest{},
			wantFields: []string{"email", "name", "password"},
			wantMsg:    "email is required",
		},
		{
			name:       "bad email",
			input:      &registerRequest{Email: "nope", Name: "A", Password: "longenough"},
			wantFields: []string{"email"},
			wantMsg:    "email must be a valid email address",
		},
		{
			name:  "valid train default model",
			input: &trainRequest{UploadID: 3},
		},
		{
			name:       "bad model type",
			input:      &trainRequest{UploadID: 3, ModelType: "svm"},
			wantFields: []string{"model_type"},
			wantMsg:    "model_type must be one of: linear random_forest both",
		},
		{
			name:       "zero upload",
			input:      &trainRequest{},
			wantFields: []string{"upload_id"},
			wantMsg:    "upload_id must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			if len(err.Fields) != len(tt.wantFields) {
				t.Fatalf("Fields = %+v, want %v", err.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if err.Fields[i].Field != f {
					t.Errorf("Fields[%d].Field = %q, want %q", i, err.Fields[i].Field, f)
				}
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

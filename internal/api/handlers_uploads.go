// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/ingest"
	"github.com/tomtom215/postpredict/internal/logging"
)

// previewRows is the number of rows echoed back after an upload.
const previewRows = 5

// UploadResponse describes a stored upload.
type UploadResponse struct {
	Upload  *database.Upload `json:"upload"`
	Preview []map[string]any `json:"preview"`
}

var errUnsupportedUpload = errors.New("upload a .csv or .json file as multipart field \"file\", or send a JSON array of records")

// CreateUpload stores a CSV or JSON dataset. The data must contain a likes
// column.
func (h *Handler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	content, format, original, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		rw.BadRequest(err.Error())
		return
	}

	ds, err := parseUpload(format, content)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if !ds.Has(features.ColLikes) {
		rw.ValidationError("Missing required column: likes", map[string]any{
			"required": []string{features.ColLikes},
			"columns":  ds.Columns(),
		})
		return
	}

	upload := &database.Upload{
		UserID:           auth.UserIDFromContext(r.Context()),
		Filename:         uuid.New().String() + "." + format,
		OriginalFilename: original,
		Format:           format,
		TotalPosts:       ds.Len(),
		Columns:          ds.Columns(),
		Content:          content,
	}
	if err := h.store.CreateUpload(r.Context(), upload); err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("upload_id", upload.ID).
		Int("rows", upload.TotalPosts).
		Str("format", format).
		Msg("upload stored")
	rw.Created(UploadResponse{Upload: upload, Preview: ingest.Preview(ds, previewRows)})
}

// ListUploads returns the user's uploads, newest first.
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	uploads, err := h.store.ListUploads(r.Context(), auth.UserIDFromContext(r.Context()), 0)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.SuccessList(uploads, len(uploads))
}

// readUpload returns the raw bytes, their format and the client's filename.
func (h *Handler) readUpload(r *http.Request) (content []byte, format, original string, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", "", err
			}
			return nil, "", "", errUnsupportedUpload
		}
		defer func() { _ = file.Close() }()

		format, ok := formatForFilename(header.Filename)
		if !ok {
			return nil, "", "", errUnsupportedUpload
		}
		content, err := io.ReadAll(file)
		if err != nil {
			return nil, "", "", err
		}
		return content, format, filepath.Base(header.Filename), nil

	case "application/json":
		content, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", "", err
		}
		return content, database.FormatJSON, "records.json", nil

	case "text/csv":
		content, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", "", err
		}
		return content, database.FormatCSV, "upload.csv", nil
	}
	return nil, "", "", errUnsupportedUpload
}

func formatForFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return database.FormatCSV, true
	case ".json":
		return database.FormatJSON, true
	}
	return "", false
}

// parseUpload turns stored upload bytes into a raw dataset.
func parseUpload(format string, content []byte) (*features.Dataset, error) {
	switch format {
	case database.FormatCSV:
		return ingest.ReadCSV(bytes.NewReader(content))
	case database.FormatJSON:
		return ingest.ReadJSON(bytes.NewReader(content))
	}
	return nil, fmt.Errorf("%w: unknown format %q", ingest.ErrInvalidInput, format)
}

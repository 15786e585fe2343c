// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/postpredict/internal/ingest"
)

// healthTimeout bounds the database ping in Health.
const healthTimeout = 2 * time.Second

// HealthStatus is returned by /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// Health reports process and database health. A failed ping returns 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: h.store != nil && h.store.Ping(ctx) == nil,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	}
	rw := NewResponseWriter(w, r)
	if !status.DatabaseConnected {
		status.Status = "degraded"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeUnavailable, "Database unavailable", status)
		return
	}
	rw.Success(status)
}

// SampleCSV serves the deterministic sample dataset as a download.
func (h *Handler) SampleCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := ingest.WriteSampleCSV(&buf, ingest.SampleRows, h.sampleSeed); err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample_social_media_data.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

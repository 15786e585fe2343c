// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

/*
Package middleware provides HTTP middleware shared by the API router.

All middleware uses the chi signature func(http.Handler) http.Handler:

  - RequestID: reuses or generates X-Request-ID and stores it in the
    logging context
  - PrometheusMetrics: request counts and latency labelled by chi route
    pattern, so /predictions/{id} is one series
  - AccessLog: one structured log line per request
  - Compression: gzip for clients that accept it
*/
package middleware

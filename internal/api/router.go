// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package api exposes the prediction pipeline over HTTP using the chi router.
//
// Every JSON response uses the APIResponse envelope. Routes under /api/v1
// other than register, login and the sample download require a bearer
// token and are scoped to the token's user.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/postpredict/internal/middleware"
)

// RouterConfig holds router-level HTTP settings.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitReqs     int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// authRateDivisor tightens the IP limit on register and login.
const authRateDivisor = 10

// NewRouter builds the HTTP handler tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	}))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Compression)
		r.Use(rateLimit(cfg, 1))

		r.Get("/sample-csv", h.SampleCSV)

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit(cfg, authRateDivisor)).Post("/register", h.Register)
			r.With(rateLimit(cfg, authRateDivisor)).Post("/login", h.Login)
			r.With(h.Authenticate).Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Post("/uploads", h.CreateUpload)
			r.Get("/uploads", h.ListUploads)
			r.Post("/predict", h.Predict)
			r.With(h.limitTraining).Post("/train", h.Train)
			r.Get("/predictions", h.ListPredictions)
			r.Get("/predictions/{id}", h.GetPrediction)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/models", h.ListModels)
		})
	})

	return r
}

// rateLimit limits requests per client IP to RateLimitReqs/divisor per window.
func rateLimit(cfg RouterConfig, divisor int) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled || cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limit := max(cfg.RateLimitReqs/divisor, 1)
	return httprate.Limit(limit, cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

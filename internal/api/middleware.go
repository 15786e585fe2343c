// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/logging"
)

// Authenticate requires a valid bearer token and stores its claims in the
// request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			NewResponseWriter(w, r).Unauthorized("Authentication required")
			return
		}

		claims, err := h.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			NewResponseWriter(w, r).Unauthorized("Invalid or expired token")
			return
		}

		ctx := auth.ContextWithClaims(r.Context(), claims)
		ctx = logging.ContextWithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limitTraining throttles training per authenticated user. It must run
// after Authenticate.
func (h *Handler) limitTraining(next http.Handler) http.Handler {
	if h.trainLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strconv.FormatInt(auth.UserIDFromContext(r.Context()), 10)
		if !h.trainLimiter.Allow(key) {
			NewResponseWriter(w, r).TooManyRequests("Training rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitExceeded is the httprate limit handler.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).TooManyRequests("Rate limit exceeded, try again later")
}

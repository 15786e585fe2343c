// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/logging"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *database.User `json:"user"`
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int64          `json:"expires_in"`
}

// Register creates an account and returns a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		rw.InternalError(err)
		return
	}

	user := &database.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("Email already registered")
			return
		}
		rw.InternalError(err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		rw.InternalError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("user registered")
	rw.Created(resp)
}

// Login exchanges credentials for a token. Unknown emails and wrong
// passwords get the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("Invalid email or password")
			return
		}
		rw.InternalError(err)
		return
	}
	if err := h.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		rw.Unauthorized("Invalid email or password")
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(resp)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user, err := h.store.GetUserByID(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(user)
}

func (h *Handler) authResponse(user *database.User) (*AuthResponse, error) {
	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.jwt.Timeout().Seconds()),
	}, nil
}

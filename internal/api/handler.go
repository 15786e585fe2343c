// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"context"
	"time"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/ml"
	"github.com/tomtom215/postpredict/internal/ml/storage"
)

// Store is the persistence used by the handlers. *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUserByID(ctx context.Context, id int64) (*database.User, error)

	CreateUpload(ctx context.Context, upload *database.Upload) error
	GetUpload(ctx context.Context, userID, id int64) (*database.Upload, error)
	ListUploads(ctx context.Context, userID int64, limit int) ([]database.Upload, error)

	SavePrediction(ctx context.Context, p *database.Prediction) error
	GetPrediction(ctx context.Context, userID int64, id string) (*database.Prediction, error)
	ListPredictions(ctx context.Context, userID int64, limit int) ([]database.Prediction, error)
	GetDashboard(ctx context.Context, userID int64) (*database.Dashboard, error)
}

// Predictor scores and trains on engineered datasets. *ml.Predictor
// implements it.
type Predictor interface {
	PredictAndAggregate(ctx context.Context, ds *features.Dataset) (*ml.PredictResult, error)
	Train(ctx context.Context, ds *features.Dataset, family ml.Family) (*ml.TrainResult, error)
}

// ModelCatalog lists stored model artifacts.
type ModelCatalog interface {
	List(ctx context.Context) ([]storage.Metadata, error)
}

var (
	_ Store        = (*database.DB)(nil)
	_ Predictor    = (*ml.Predictor)(nil)
	_ ModelCatalog = (*storage.FileStore)(nil)
	_ ModelCatalog = (*storage.BadgerStore)(nil)
)

// Handler serves the HTTP API.
type Handler struct {
	store        Store
	predictor    Predictor
	models       ModelCatalog
	engineer     *features.Engineer
	hasher       *auth.Hasher
	jwt          *auth.JWTManager
	trainLimiter *auth.RateLimiter

	defaultFamily  ml.Family
	maxUploadBytes int64
	sampleSeed     int64
	startTime      time.Time
}

// HandlerConfig carries Handler dependencies.
type HandlerConfig struct {
	Store         Store
	Predictor     Predictor
	Models        ModelCatalog
	Engineer      *features.Engineer
	Hasher        *auth.Hasher
	JWT           *auth.JWTManager
	TrainLimiter  *auth.RateLimiter
	DefaultFamily ml.Family

	// MaxUploadBytes bounds upload bodies (default 10 MiB).
	MaxUploadBytes int64
	SampleSeed     int64
}

const defaultMaxUploadBytes = 10 << 20

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		store:          cfg.Store,
		predictor:      cfg.Predictor,
		models:         cfg.Models,
		engineer:       cfg.Engineer,
		hasher:         cfg.Hasher,
		jwt:            cfg.JWT,
		trainLimiter:   cfg.TrainLimiter,
		defaultFamily:  cfg.DefaultFamily,
		maxUploadBytes: cfg.MaxUploadBytes,
		sampleSeed:     cfg.SampleSeed,
		startTime:      time.Now(),
	}
	if h.engineer == nil {
		h.engineer = features.NewEngineer(features.DefaultConfig())
	}
	if h.hasher == nil {
		h.hasher = auth.NewHasher(auth.DefaultBcryptCost)
	}
	if h.defaultFamily == "" {
		h.defaultFamily = ml.FamilyRandomForest
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}
	return h
}

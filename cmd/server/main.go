// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package main is the entry point for the PostPredict server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, then config.yaml, then environment (koanf)
//  2. Logging: zerolog, bridged to slog for the supervisor
//  3. Database: DuckDB holding users, uploads and prediction history
//  4. Model store: file or badger artifact store for trained models
//  5. HTTP server: chi router under a suture supervisor tree
//
// SIGINT and SIGTERM cancel the tree; the HTTP server drains in-flight
// requests before the database is checkpointed and closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/postpredict/internal/api"
	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/config"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/logging"
	"github.com/tomtom215/postpredict/internal/ml"
	"github.com/tomtom215/postpredict/internal/ml/storage"
	"github.com/tomtom215/postpredict/internal/supervisor"
	"github.com/tomtom215/postpredict/internal/supervisor/services"
)

const (
	checkpointInterval   = 5 * time.Minute
	limiterCleanInterval = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("model_backend", cfg.Models.Backend).
		Str("default_family", cfg.Models.DefaultFamily).
		Msg("Starting PostPredict")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, closeStore, err := openArtifactStore(&cfg.Models)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.Error().Err(err).Msg("Error closing model store")
		}
	}()

	family, err := ml.ParseFamily(cfg.Models.DefaultFamily)
	if err != nil {
		return fmt.Errorf("models.default_family: %w", err)
	}

	trainer := ml.NewTrainer(ml.TrainerConfig{
		Forest: ml.ForestConfig{
			Trees:    cfg.Models.Trees,
			MaxDepth: cfg.Models.MaxDepth,
			MinLeaf:  cfg.Models.MinLeaf,
			Seed:     cfg.Models.Seed,
			Workers:  cfg.Models.Workers,
		},
		TestFraction: cfg.Models.TestFraction,
		MinSplitRows: cfg.Models.MinSplitRows,
		Seed:         cfg.Models.Seed,
	}, logging.WithComponent("trainer"))
	predictor := ml.NewPredictor(store, trainer, family, logging.WithComponent("predictor"))

	engCfg := features.DefaultConfig()
	if cfg.Features.RollingWindow > 0 {
		engCfg.RollingWindow = cfg.Features.RollingWindow
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize JWT manager: %w", err)
	}
	trainLimiter := auth.NewRateLimiter(cfg.Security.TrainPerMinute, time.Minute)

	handler := api.NewHandler(api.HandlerConfig{
		Store:          db,
		Predictor:      predictor,
		Models:         store,
		Engineer:       features.NewEngineer(engCfg),
		Hasher:         auth.NewHasher(auth.DefaultBcryptCost),
		JWT:            jwtManager,
		TrainLimiter:   trainLimiter,
		DefaultFamily:  family,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SampleSeed:     cfg.Models.Seed,
	})

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(handler, api.RouterConfig{
			CORSOrigins:       cfg.Security.CORSOrigins,
			RateLimitReqs:     cfg.Security.RateLimitReqs,
			RateLimitWindow:   cfg.Security.RateLimitWindow,
			RateLimitDisabled: cfg.Security.RateLimitDisabled,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	tree.AddMaintenanceService(services.NewPeriodicService("duckdb-checkpoint", checkpointInterval, db.Checkpoint))
	tree.AddMaintenanceService(services.NewPeriodicService("train-limiter-cleanup", limiterCleanInterval,
		func(context.Context) error {
			trainLimiter.Cleanup()
			return nil
		}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop cleanly")
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// artifactStore is a model store that can also list its contents.
type artifactStore interface {
	ml.ArtifactStore
	api.ModelCatalog
}

// openArtifactStore returns the configured model store and its close func.
func openArtifactStore(cfg *config.ModelsConfig) (artifactStore, func() error, error) {
	switch cfg.Backend {
	case "badger":
		s, err := storage.OpenBadgerStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger model store: %w", err)
		}
		return s, s.Close, nil
	case "", "file":
		s, err := storage.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file model store: %w", err)
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown models.backend %q", cfg.Backend)
	}
}

// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package config loads PostPredict configuration from layered sources
// (built-in defaults, an optional YAML file, and environment variables)
// using koanf v2.
//
// Precedence is ENV > File > Defaults. See LoadWithKoanf.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Models   ModelsConfig   `koanf:"models"`
	Features FeaturesConfig `koanf:"features"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// ModelsConfig controls model training and artifact storage.
type ModelsConfig struct {
	// Backend selects the artifact store: "file" or "badger".
	Backend string `koanf:"backend"`

	// Dir is the directory holding model artifacts (file backend) or the
	// badger value log (badger backend).
	Dir string `koanf:"dir"`

	// DefaultFamily is the family trained by the retrain fallback:
	// "linear", "random_forest" or "both".
	DefaultFamily string `koanf:"default_family"`

	Trees        int     `koanf:"trees"`
	MaxDepth     int     `koanf:"max_depth"`
	MinLeaf      int     `koanf:"min_leaf"`
	Seed         int64   `koanf:"seed"`
	TestFraction float64 `koanf:"test_fraction"`

	// MinSplitRows is the row count above which a train/evaluation split is made.
	MinSplitRows int `koanf:"min_split_rows"`

	// Workers bounds parallel tree fitting (0 = use NumCPU).
	Workers int `koanf:"workers"`
}

// FeaturesConfig controls feature engineering.
type FeaturesConfig struct {
	RollingWindow int `koanf:"rolling_window"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// TrainPerMinute bounds explicit training requests per user.
	TrainPerMinute int `koanf:"train_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

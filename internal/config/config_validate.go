// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package config

import (
	"fmt"
)

var (
	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validBackends = map[string]bool{
		"file": true, "badger": true,
	}
	validFamilies = map[string]bool{
		"linear": true, "random_forest": true, "both": true,
	}
)

// minJWTSecretLength is the shortest accepted HMAC secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if c.Features.RollingWindow < 1 {
		return fmt.Errorf("ROLLING_WINDOW must be at least 1")
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateModels() error {
	m := c.Models
	if !validBackends[m.Backend] {
		return fmt.Errorf("MODEL_BACKEND must be one of: file, badger")
	}
	if m.Dir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if !validFamilies[m.DefaultFamily] {
		return fmt.Errorf("MODEL_FAMILY must be one of: linear, random_forest, both")
	}
	if m.Trees < 1 {
		return fmt.Errorf("MODEL_TREES must be at least 1")
	}
	if m.MaxDepth < 1 {
		return fmt.Errorf("MODEL_MAX_DEPTH must be at least 1")
	}
	if m.TestFraction <= 0 || m.TestFraction >= 1 {
		return fmt.Errorf("MODEL_TEST_FRACTION must be between 0 and 1 (exclusive), got %v", m.TestFraction)
	}
	if m.Workers < 0 {
		return fmt.Errorf("MODEL_WORKERS must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.Security.TrainPerMinute < 1 {
		return fmt.Errorf("TRAIN_PER_MINUTE must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

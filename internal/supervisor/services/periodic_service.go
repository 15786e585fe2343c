// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package services

import (
	"context"
	"time"

	"github.com/tomtom215/postpredict/internal/logging"
)

// PeriodicService runs a task on a fixed interval. Task errors are logged
// and do not stop the service.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
}

// NewPeriodicService creates a PeriodicService.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error) *PeriodicService {
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.task(ctx); err != nil {
				logging.Warn().Err(err).Str("service", p.name).Msg("periodic task failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (p *PeriodicService) String() string {
	return p.name
}

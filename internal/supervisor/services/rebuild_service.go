// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// defaultRebuildTimeout bounds a single full rebuild.
const defaultRebuildTimeout = 30 * time.Minute

// IndexRebuilder recomputes and stores the full similarity index.
type IndexRebuilder interface {
	Rebuild(ctx context.Context) error
}

// RebuildServiceConfig holds configuration for the rebuild service.
type RebuildServiceConfig struct {
	// OnStartup rebuilds once when the service starts.
	OnStartup bool

	// Interval is the rebuild period.
	Interval time.Duration

	// Timeout bounds one rebuild. Zero means 30 minutes.
	Timeout time.Duration
}

// RebuildService periodically recomputes the full similarity index. Failed
// rebuilds are logged and retried on the next tick; they never stop the
// service.
type RebuildService struct {
	rebuilder IndexRebuilder
	config    RebuildServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewRebuildService creates a new rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(rebuilder IndexRebuilder, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRebuildTimeout
	}
	return &RebuildService{
		rebuilder: rebuilder,
		config:    cfg,
		logger:    logger.With().Str("service", "rebuild").Logger(),
		name:      "rebuild-service",
	}
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("rebuild service starting")

	if s.config.OnStartup {
		if err := s.rebuild(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup rebuild failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled rebuild failed")
			}
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context) error {
	rebuildCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.rebuilder.Rebuild(rebuildCtx); err != nil {
		return err
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("similarity index rebuilt")
	return nil
}

// String implements fmt.Stringer for suture's logs.
func (s *RebuildService) String() string {
	return s.name
}

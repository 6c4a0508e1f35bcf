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

// GarbageCollector matches (*pairstore.Store).RunGC.
type GarbageCollector interface {
	RunGC() error
}

// PairStoreGCService runs value log garbage collection on a fixed interval.
type PairStoreGCService struct {
	gc       GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewPairStoreGCService returns a GC service. A non-positive interval means
// ten minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPairStoreGCService(gc GarbageCollector, interval time.Duration, logger zerolog.Logger) *PairStoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PairStoreGCService{
		gc:       gc,
		interval: interval,
		logger:   logger.With().Str("service", "pairstore-gc").Logger(),
		name:     "pairstore-gc",
	}
}

// Serve implements suture.Service. GC errors are logged, not returned.
func (s *PairStoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("pair store GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *PairStoreGCService) String() string {
	return s.name
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package services

import (
	"context"
	"errors"
	"fmt"
)

// RecomputeRunner matches the lifecycle of *recompute.Worker.
type RecomputeRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// RecomputeFactory builds a new runner for each start of the service.
type RecomputeFactory func() (RecomputeRunner, error)

// RecomputeService supervises the recompute queue consumer.
type RecomputeService struct {
	factory RecomputeFactory
	name    string
}

// NewRecomputeService returns a service running runners built by factory.
func NewRecomputeService(factory RecomputeFactory) *RecomputeService {
	return &RecomputeService{
		factory: factory,
		name:    "recompute-worker",
	}
}

// Serve implements suture.Service. A runner that stops before ctx is
// canceled is reported as a failure so suture restarts it.
func (s *RecomputeService) Serve(ctx context.Context) error {
	runner, err := s.factory()
	if err != nil {
		return fmt.Errorf("recompute worker start failed: %w", err)
	}

	runErr := runner.Run(ctx)
	closeErr := runner.Close()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr == nil && closeErr == nil {
		return errors.New("recompute worker stopped unexpectedly")
	}
	return errors.Join(runErr, closeErr)
}

// String implements fmt.Stringer for suture's logs.
func (s *RecomputeService) String() string {
	return s.name
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

//go:build !nats

package recompute

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/tomtom215/simrec/internal/config"
)

func newNATSTransport(_ *config.NATSConfig, _ watermill.LoggerAdapter) (*Transport, error) {
	return nil, ErrNATSUnavailable
}

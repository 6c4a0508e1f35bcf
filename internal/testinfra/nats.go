// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package testinfra

import (
	"context"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the NATS image used by default.
	DefaultNATSImage = "nats:2.10-alpine"

	natsPort = "4222/tcp"
)

// NATSContainer is a running JetStream-enabled NATS server.
type NATSContainer struct {
	testcontainers.Container
	// URL is the client connection URL.
	URL string
}

// NewNATSContainer starts a NATS server with JetStream enabled.
func NewNATSContainer(ctx context.Context, opts ...Option) (*NATSContainer, error) {
	cfg := newContainerConfig(DefaultNATSImage, opts)

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{natsPort},
		Cmd:          []string{"-js"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server is ready"),
			wait.ForListeningPort(natsPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, addr, err := startContainer(ctx, req, natsPort)
	if err != nil {
		return nil, err
	}
	return &NATSContainer{Container: container, URL: "nats://" + addr}, nil
}

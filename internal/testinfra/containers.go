// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

const defaultStartTimeout = 60 * time.Second

// SkipIfNoDocker skips the test when the Docker daemon is unreachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable reports whether `docker info` succeeds.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// CleanupContainer terminates container, logging instead of failing.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// Option configures a container.
type Option func(*containerConfig)

type containerConfig struct {
	image        string
	startTimeout time.Duration
}

// WithImage overrides the container image.
func WithImage(image string) Option {
	return func(c *containerConfig) {
		c.image = image
	}
}

// WithStartTimeout sets how long to wait for the container to become ready.
func WithStartTimeout(timeout time.Duration) Option {
	return func(c *containerConfig) {
		c.startTimeout = timeout
	}
}

func newContainerConfig(image string, opts []Option) *containerConfig {
	cfg := &containerConfig{image: image, startTimeout: defaultStartTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// startContainer starts req and returns the host address of port.
func startContainer(ctx context.Context, req testcontainers.ContainerRequest, port nat.Port) (testcontainers.Container, string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create %s container: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get mapped port: %w", err)
	}
	return container, fmt.Sprintf("%s:%s", host, mapped.Port()), nil
}

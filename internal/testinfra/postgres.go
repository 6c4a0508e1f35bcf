// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package testinfra

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage is the Postgres image used by default.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort     = "5432/tcp"
	postgresUser     = "simrec"
	postgresPassword = "simrec"
	postgresDB       = "simrec"
)

// PostgresContainer is a running Postgres server.
type PostgresContainer struct {
	testcontainers.Container
	// DSN is a lib/pq connection URL for the test database.
	DSN string
}

// NewPostgresContainer starts a Postgres server with an empty database.
func NewPostgresContainer(ctx context.Context, opts ...Option) (*PostgresContainer, error) {
	cfg := newContainerConfig(DefaultPostgresImage, opts)

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The server restarts once after initdb, so wait for the second
		// readiness line.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, addr, err := startContainer(ctx, req, postgresPort)
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: container,
		DSN:       fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", postgresUser, postgresPassword, addr, postgresDB),
	}, nil
}

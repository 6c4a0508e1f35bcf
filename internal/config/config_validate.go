// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/simrec/internal/validation"
)

// Validate checks struct tag constraints, then the rules that span sections.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	return c.validatePairStore()
}

func (c *Config) validateDatabase() error {
	if c.Database.Driver == "postgres" && !strings.Contains(c.Database.DSN, "=") && !strings.HasPrefix(c.Database.DSN, "postgres") {
		return fmt.Errorf("DB_DSN must be a postgres URL or key=value connection string when DB_DRIVER=postgres")
	}
	return nil
}

func (c *Config) validatePairStore() error {
	if c.PairStore.InMemory {
		return nil
	}
	if c.PairStore.Path == c.Database.DSN {
		return fmt.Errorf("pairstore.path must differ from database.dsn")
	}
	return nil
}

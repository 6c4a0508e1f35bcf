// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"fmt"

	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// Config contains the options of the recommendation engine facade.
// The core functions take their strategy as explicit arguments; Config only
// selects those arguments by name.
type Config struct {
	// Metric is the similarity measure used for every computation.
	// One of cosine, sorensen, euclidean, pearson, dot.
	// Default: cosine.
	Metric similarity.Metric `json:"metric" koanf:"metric" validate:"required,simmetric"`

	// Mode selects recommendation score aggregation.
	// One of raw_sum, weighted_average.
	// Default: weighted_average.
	Mode string `json:"mode" koanf:"mode" validate:"required,recmode"`

	// TopK truncates similarity lists and recommendations. Zero keeps everything.
	// Default: 0.
	TopK int `json:"top_k" koanf:"top_k" validate:"gte=0"`

	// PositiveOnly drops entries scoring <= 0 from engine output.
	// Default: false.
	PositiveOnly bool `json:"positive_only" koanf:"positive_only"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Metric:       similarity.MetricCosine,
		Mode:         ModeWeightedAverage.String(),
		TopK:         0,
		PositiveOnly: false,
	}
}

// Validate checks the configuration. Unknown metric or mode names yield a
// *ConfigError.
func (c *Config) Validate() error {
	if _, err := similarity.Lookup[string](c.Metric); err != nil {
		return &ConfigError{Field: "metric", Value: string(c.Metric), Err: err}
	}
	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d", c.TopK)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

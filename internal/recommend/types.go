// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrSelfPair is returned when a pair is built from a key and itself.
var ErrSelfPair = errors.New("pair keys must be distinct")

// Scored is a key with its similarity or recommendation score.
type Scored[K cmp.Ordered] struct {
	Score float64 `json:"score"`
	Key   K       `json:"key"`
}

// compareScored orders by score descending, then key descending.
func compareScored[K cmp.Ordered](a, b Scored[K]) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(b.Key, a.Key)
}

// SortScored sorts s in place by score descending. Equal scores are ordered
// by key descending so results are reproducible.
func SortScored[K cmp.Ordered](s []Scored[K]) {
	slices.SortFunc(s, compareScored[K])
}

// PairKey is an unordered pair of distinct keys in canonical order: Low < High.
type PairKey[K cmp.Ordered] struct {
	Low  K `json:"low"`
	High K `json:"high"`
}

// NewPairKey canonicalizes (a, b) so that (a, b) and (b, a) yield the same pair.
func NewPairKey[K cmp.Ordered](a, b K) (PairKey[K], error) {
	switch cmp.Compare(a, b) {
	case -1:
		return PairKey[K]{Low: a, High: b}, nil
	case 1:
		return PairKey[K]{Low: b, High: a}, nil
	default:
		return PairKey[K]{}, fmt.Errorf("%w: %v", ErrSelfPair, a)
	}
}

// Canonical reports whether p is stored in canonical order.
func (p PairKey[K]) Canonical() bool {
	return cmp.Less(p.Low, p.High)
}

// Other returns the member of p that is not key.
func (p PairKey[K]) Other(key K) K {
	if p.Low == key {
		return p.High
	}
	return p.Low
}

// String implements fmt.Stringer.
func (p PairKey[K]) String() string {
	return fmt.Sprintf("(%v, %v)", p.Low, p.High)
}

// SimilarityIndex maps every entity to its ranked neighbours.
type SimilarityIndex[K cmp.Ordered] map[K][]Scored[K]

// Assign implements IndexWriter so an in-memory index can be a write target.
func (idx SimilarityIndex[K]) Assign(key K, ranked []Scored[K]) error {
	idx[key] = ranked
	return nil
}

// Mode selects how recommendation scores are aggregated.
type Mode int

const (
	// ModeRawSum ranks candidates by the sum of similarity x rating.
	ModeRawSum Mode = iota
	// ModeWeightedAverage divides that sum by the summed similarity weights.
	ModeWeightedAverage
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRawSum:
		return "raw_sum"
	case ModeWeightedAverage:
		return "weighted_average"
	default:
		return "unknown"
	}
}

// ParseMode resolves a configuration name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "raw_sum":
		return ModeRawSum, nil
	case "weighted_average":
		return ModeWeightedAverage, nil
	default:
		return 0, &ConfigError{Field: "mode", Value: s, Err: ErrUnknownMode}
	}
}

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown recommendation mode")

// ConfigError reports an invalid engine option.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap allows errors.Is against the underlying sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

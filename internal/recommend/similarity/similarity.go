// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package similarity implements pairwise similarity measures over sparse
// rating profiles.
//
// Every measure is a pure function of its two inputs and never fails:
// degenerate inputs (empty profiles, zero magnitude, no shared keys) map to
// a fixed fallback value instead of an error.
//
//	| Measure   | Range      | Degenerate result        |
//	|-----------|------------|--------------------------|
//	| Cosine    | [-1, 1]    | 0                        |
//	| Sorensen  | [0, 1]*    | 0                        |
//	| Euclidean | (0, 1]     | 1 when no keys are shared|
//	| Pearson   | [-1, 1]    | 0                        |
//
// (*) for non-negative ratings.
//
// Cosine, Sorensen and Pearson are clamped to [-1, 1], so rounding never
// pushes a score past its range.
package similarity

import (
	"cmp"
	"math"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"gonum.org/v1/gonum/floats"
)

// Func scores how alike two profiles are. Implementations must be pure.
type Func[K cmp.Ordered] func(a, b ratings.Profile[K]) float64

// Cosine returns dot(a, b) / (|a| |b|) over the union of keys.
func Cosine[K cmp.Ordered](a, b ratings.Profile[K]) float64 {
	if len(a.Keys()) == 0 || len(b.Keys()) == 0 {
		return 0
	}
	keys := Union(a, b)
	return CosineValues(Dense(a, keys), Dense(b, keys))
}

// CosineValues is Cosine over two dense vectors, shorter one zero-padded.
func CosineValues(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	denom := Magnitude(a) * Magnitude(b)
	if denom == 0 {
		return 0
	}
	return clampUnit(DotValues(a, b) / denom)
}

// Sorensen returns the Sørensen–Dice coefficient 2 dot(a, b) / (|a|² + |b|²)
// over the union of keys.
func Sorensen[K cmp.Ordered](a, b ratings.Profile[K]) float64 {
	keys := Union(a, b)
	return SorensenValues(Dense(a, keys), Dense(b, keys))
}

// SorensenValues is Sorensen over two dense vectors, shorter one zero-padded.
func SorensenValues(a, b []float64) float64 {
	denom := MagnitudeSquared(a) + MagnitudeSquared(b)
	if denom == 0 {
		return 0
	}
	return clampUnit(2 * DotValues(a, b) / denom)
}

// Euclidean returns 1 / (1 + sum of squared differences over shared keys).
// Profiles sharing no key score 1, the same as identical profiles.
func Euclidean[K cmp.Ordered](a, b ratings.Profile[K]) float64 {
	shared := Shared(a, b)
	if len(shared) == 0 {
		return 1
	}
	diff := floats.SubTo(make([]float64, len(shared)), Dense(a, shared), Dense(b, shared))
	return 1 / (1 + MagnitudeSquared(diff))
}

// Pearson returns the Pearson correlation over the keys both profiles hold.
// It returns 0 when nothing is shared or either side has no variance.
func Pearson[K cmp.Ordered](a, b ratings.Profile[K]) float64 {
	shared := Shared(a, b)
	if len(shared) == 0 {
		return 0
	}
	av, bv := Dense(a, shared), Dense(b, shared)
	n := float64(len(shared))

	sumA, sumB := floats.Sum(av), floats.Sum(bv)
	num := floats.Dot(av, bv) - sumA*sumB/n
	fa := MagnitudeSquared(av) - sumA*sumA/n
	fb := MagnitudeSquared(bv) - sumB*sumB/n

	denom := math.Sqrt(fa * fb)
	if denom == 0 || math.IsNaN(denom) {
		return 0
	}
	return clampUnit(num / denom)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Dot adapts DotProduct over the union of keys to a Func.
func Dot[K cmp.Ordered](a, b ratings.Profile[K]) float64 {
	return DotProduct(a, b, nil)
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package similarity

import (
	"cmp"
	"math"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"gonum.org/v1/gonum/floats"
)

// MagnitudeSquared returns the sum of squares of values.
func MagnitudeSquared(values []float64) float64 {
	return floats.Dot(values, values)
}

// Magnitude returns the Euclidean norm of values, 0 for an empty slice.
func Magnitude(values []float64) float64 {
	return math.Sqrt(MagnitudeSquared(values))
}

// DotProduct sums a[k]*b[k] over keys. A nil keys slice means the union of
// both profiles' keys. Absent entries read as the owning profile's default,
// so keys held by only one side still contribute when a default is nonzero.
func DotProduct[K cmp.Ordered](a, b ratings.Profile[K], keys []K) float64 {
	if keys == nil {
		keys = Union(a, b)
	}
	var sum float64
	for _, k := range keys {
		sum += a.Get(k) * b.Get(k)
	}
	return sum
}

// DotValues is the dense form of DotProduct. Positions past the end of the
// shorter slice read as zero.
func DotValues(a, b []float64) float64 {
	n := min(len(a), len(b))
	return floats.Dot(a[:n], b[:n])
}

// Union returns the sorted union of the keys of a and b.
func Union[K cmp.Ordered](a, b ratings.Profile[K]) []K {
	ak, bk := a.Keys(), b.Keys()
	out := make([]K, 0, len(ak)+len(bk))
	i, j := 0, 0
	for i < len(ak) && j < len(bk) {
		switch c := cmp.Compare(ak[i], bk[j]); {
		case c < 0:
			out = append(out, ak[i])
			i++
		case c > 0:
			out = append(out, bk[j])
			j++
		default:
			out = append(out, ak[i])
			i++
			j++
		}
	}
	out = append(out, ak[i:]...)
	return append(out, bk[j:]...)
}

// Shared returns the sorted keys explicitly held by both a and b.
func Shared[K cmp.Ordered](a, b ratings.Profile[K]) []K {
	ak, bk := a.Keys(), b.Keys()
	var out []K
	i, j := 0, 0
	for i < len(ak) && j < len(bk) {
		switch c := cmp.Compare(ak[i], bk[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, ak[i])
			i++
			j++
		}
	}
	return out
}

// Dense reads p at each of keys, defaults included.
func Dense[K cmp.Ordered](p ratings.Profile[K], keys []K) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = p.Get(k)
	}
	return out
}

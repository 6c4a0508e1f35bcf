// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"cmp"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// RecommendFromProfiles ranks items the target has not rated using a
// precomputed similarity index.
//
// For every item the target rated, its neighbours each receive
// similarity x rating. Neighbours the target already rated with a nonzero
// value are skipped. ModeRawSum ranks by the accumulated sum;
// ModeWeightedAverage divides it by the accumulated similarity and leaves out
// candidates whose weight sums to zero.
func RecommendFromProfiles[K cmp.Ordered](index SimilarityIndex[K], target ratings.Profile[K], mode Mode) []Scored[K] {
	rated := ratedKeys(target)

	totals := make(map[K]float64)
	weights := make(map[K]float64)
	for _, item := range target.Keys() {
		rating := target.Get(item)
		for _, n := range index[item] {
			if rated[n.Key] {
				continue
			}
			totals[n.Key] += n.Score * rating
			weights[n.Key] += n.Score
		}
	}

	out := make([]Scored[K], 0, len(totals))
	for key, total := range totals {
		score := total
		if mode == ModeWeightedAverage {
			if weights[key] == 0 {
				continue
			}
			score = total / weights[key]
		}
		out = append(out, Scored[K]{Score: score, Key: key})
	}
	SortScored(out)
	return out
}

// RecommendFromDataset ranks items for target by comparing its profile with
// every other entity of ds directly, without a precomputed index.
//
// Entities with similarity <= 0 are ignored. Each remaining entity lends its
// ratings of items the target has not rated, weighted by its similarity; the
// result is the similarity-weighted average rating per item. Returned keys
// are second-level keys of ds (items, when ds holds ratings by user).
func RecommendFromDataset[K cmp.Ordered](ds ratings.Dataset[K], target K, fn similarity.Func[K]) []Scored[K] {
	mine := ds.Profile(target)
	rated := ratedKeys(mine)

	totals := make(map[K]float64)
	weights := make(map[K]float64)
	for _, other := range ds.Keys() {
		if other == target {
			continue
		}
		theirs := ds.Profile(other)
		sim := fn(mine, theirs)
		if sim <= 0 {
			continue
		}
		for _, item := range theirs.Keys() {
			if rated[item] {
				continue
			}
			totals[item] += theirs.Get(item) * sim
			weights[item] += sim
		}
	}

	out := make([]Scored[K], 0, len(totals))
	for item, total := range totals {
		out = append(out, Scored[K]{Score: total / weights[item], Key: item})
	}
	SortScored(out)
	return out
}

// ratedKeys returns the keys p holds with a nonzero rating.
func ratedKeys[K cmp.Ordered](p ratings.Profile[K]) map[K]bool {
	rated := make(map[K]bool, len(p.Keys()))
	for _, k := range p.Keys() {
		if p.Get(k) != 0 {
			rated[k] = true
		}
	}
	return rated
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"cmp"
	"fmt"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// IndexWriter receives one entity's ranked neighbours at a time.
type IndexWriter[K cmp.Ordered] interface {
	Assign(key K, ranked []Scored[K]) error
}

// SimilarTo ranks every other entity of ds by its similarity to key.
func SimilarTo[K cmp.Ordered](ds ratings.Dataset[K], key K, fn similarity.Func[K]) []Scored[K] {
	target := ds.Profile(key)
	keys := ds.Keys()

	out := make([]Scored[K], 0, len(keys))
	for _, other := range keys {
		if other == key {
			continue
		}
		out = append(out, Scored[K]{Score: fn(target, ds.Profile(other)), Key: other})
	}
	SortScored(out)
	return out
}

// ComputeSimilarityIndex ranks, for every entity, all other entities by
// similarity. Lists are complete; truncation is left to the caller.
func ComputeSimilarityIndex[K cmp.Ordered](ds ratings.Dataset[K], fn similarity.Func[K]) SimilarityIndex[K] {
	idx := make(SimilarityIndex[K], len(ds.Keys()))
	// SimilarityIndex.Assign never fails.
	_ = ComputeSimilarityIndexInto(ds, fn, idx)
	return idx
}

// ComputeSimilarityIndexInto writes each entity's ranked list to w as soon
// as it is complete, stopping at the first write error.
func ComputeSimilarityIndexInto[K cmp.Ordered](ds ratings.Dataset[K], fn similarity.Func[K], w IndexWriter[K]) error {
	keys := ds.Keys()
	profiles := loadProfiles(ds)

	for _, key := range keys {
		target := profiles[key]
		ranked := make([]Scored[K], 0, len(keys)-1)
		for _, other := range keys {
			if other == key {
				continue
			}
			ranked = append(ranked, Scored[K]{Score: fn(target, profiles[other]), Key: other})
		}
		SortScored(ranked)

		if err := w.Assign(key, ranked); err != nil {
			return fmt.Errorf("write index entry %v: %w", key, err)
		}
	}
	return nil
}

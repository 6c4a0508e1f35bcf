// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recommend

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tomtom215/simrec/internal/recommend/ratings"
	"github.com/tomtom215/simrec/internal/recommend/similarity"
)

// PairWriter receives pairwise scores as they are computed.
type PairWriter[K cmp.Ordered] interface {
	Put(pair PairKey[K], score float64) error
}

// PairScores is an in-memory pairwise result.
type PairScores[K cmp.Ordered] map[PairKey[K]]float64

// Put implements PairWriter.
func (p PairScores[K]) Put(pair PairKey[K], score float64) error {
	p[pair] = score
	return nil
}

// Get returns the score of the unordered pair (a, b).
func (p PairScores[K]) Get(a, b K) (float64, bool) {
	pair, err := NewPairKey(a, b)
	if err != nil {
		return 0, false
	}
	score, ok := p[pair]
	return score, ok
}

// MakePairs returns every canonical pair of distinct keys. Duplicate input
// keys are ignored. Pairs are ordered by Low, then High.
func MakePairs[K cmp.Ordered](keys []K) []PairKey[K] {
	uniq := slices.Compact(slices.Sorted(slices.Values(keys)))
	if len(uniq) < 2 {
		return nil
	}
	pairs := make([]PairKey[K], 0, len(uniq)*(len(uniq)-1)/2)
	for i := range uniq {
		for j := i + 1; j < len(uniq); j++ {
			pairs = append(pairs, PairKey[K]{Low: uniq[i], High: uniq[j]})
		}
	}
	return pairs
}

// ComputeAllPairwise scores every unordered pair of distinct entities in ds.
func ComputeAllPairwise[K cmp.Ordered](ds ratings.Dataset[K], fn similarity.Func[K]) PairScores[K] {
	out := make(PairScores[K])
	// PairScores.Put never fails.
	_ = ComputeAllPairwiseInto(ds, fn, out)
	return out
}

// ComputeAllPairwiseInto streams every pairwise score into w, stopping at
// the first write error. Each pair is scored once as fn(low, high).
func ComputeAllPairwiseInto[K cmp.Ordered](ds ratings.Dataset[K], fn similarity.Func[K], w PairWriter[K]) error {
	pairs := MakePairs(ds.Keys())
	profiles := loadProfiles(ds)

	for _, pair := range pairs {
		score := fn(profiles[pair.Low], profiles[pair.High])
		if err := w.Put(pair, score); err != nil {
			return fmt.Errorf("write pair %v: %w", pair, err)
		}
	}
	return nil
}

// loadProfiles reads each profile of ds once per computation.
func loadProfiles[K cmp.Ordered](ds ratings.Dataset[K]) map[K]ratings.Profile[K] {
	keys := ds.Keys()
	profiles := make(map[K]ratings.Profile[K], len(keys))
	for _, k := range keys {
		profiles[k] = ds.Profile(k)
	}
	return profiles
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package ratings

import "cmp"

// Builder accumulates ratings before freezing them into a MapDataset.
// It is not safe for concurrent use.
type Builder[K cmp.Ordered] struct {
	data map[K]map[K]float64
	def  float64
}

// NewBuilder returns an empty builder for a dataset with the given default.
func NewBuilder[K cmp.Ordered](def float64) *Builder[K] {
	return &Builder[K]{
		data: make(map[K]map[K]float64),
		def:  def,
	}
}

// AddEntity registers entity even if it ends up with no ratings.
func (b *Builder[K]) AddEntity(entity K) {
	if _, ok := b.data[entity]; !ok {
		b.data[entity] = make(map[K]float64)
	}
}

// Set stores value for (entity, key), replacing any previous value.
func (b *Builder[K]) Set(entity, key K, value float64) {
	b.AddEntity(entity)
	b.data[entity][key] = value
}

// SetMax stores value for (entity, key) unless a larger value is already set.
func (b *Builder[K]) SetMax(entity, key K, value float64) {
	b.AddEntity(entity)
	if cur, ok := b.data[entity][key]; ok && cur >= value {
		return
	}
	b.data[entity][key] = value
}

// Len returns the number of entities seen so far.
func (b *Builder[K]) Len() int {
	return len(b.data)
}

// Build returns the accumulated dataset. The builder may keep being used.
func (b *Builder[K]) Build() *MapDataset[K] {
	return NewDataset(b.data, b.def)
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package ratings

import (
	"cmp"
	"iter"
	"slices"
)

// Profile is a sparse rating vector keyed by item or rater identifier.
type Profile[K cmp.Ordered] interface {
	// Get returns the rating stored for key, or Default() when absent.
	// It never fails.
	Get(key K) float64

	// Keys returns the explicitly stored keys in ascending order, without duplicates.
	Keys() []K

	// Default is the value reported for keys the profile does not hold.
	Default() float64
}

// Dataset is a collection of profiles keyed by entity identifier.
type Dataset[K cmp.Ordered] interface {
	// Keys returns every entity key in ascending order, without duplicates.
	Keys() []K

	// Profile returns the profile for key. Unknown keys yield an empty
	// profile carrying the dataset default.
	Profile(key K) Profile[K]
}

// defaulter is implemented by datasets that expose their default rating.
type defaulter interface {
	Default() float64
}

// MapProfile is an in-memory Profile.
type MapProfile[K cmp.Ordered] struct {
	values map[K]float64
	keys   []K
	def    float64
}

// NewProfile builds a profile from values. Entries equal to def are dropped
// so the profile never stores an explicit copy of its default. The input map
// is copied.
func NewProfile[K cmp.Ordered](values map[K]float64, def float64) *MapProfile[K] {
	p := &MapProfile[K]{
		values: make(map[K]float64, len(values)),
		def:    def,
	}
	for k, v := range values {
		if v == def {
			continue
		}
		p.values[k] = v
	}
	p.keys = sortedKeys(p.values)
	return p
}

// Get implements Profile.
func (p *MapProfile[K]) Get(key K) float64 {
	if v, ok := p.values[key]; ok {
		return v
	}
	return p.def
}

// Keys implements Profile. The returned slice must not be modified.
func (p *MapProfile[K]) Keys() []K {
	return p.keys
}

// Default implements Profile.
func (p *MapProfile[K]) Default() float64 {
	return p.def
}

// Len returns the number of explicit entries.
func (p *MapProfile[K]) Len() int {
	return len(p.values)
}

// Values returns the stored ratings in the order of Keys.
func Values[K cmp.Ordered](p Profile[K]) []float64 {
	keys := p.Keys()
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = p.Get(k)
	}
	return out
}

// MapDataset is an in-memory Dataset.
type MapDataset[K cmp.Ordered] struct {
	profiles map[K]*MapProfile[K]
	keys     []K
	def      float64
	empty    *MapProfile[K]
}

// NewDataset builds a dataset from nested maps. Entities whose ratings are
// all equal to def are kept with an empty profile.
func NewDataset[K cmp.Ordered](data map[K]map[K]float64, def float64) *MapDataset[K] {
	ds := &MapDataset[K]{
		profiles: make(map[K]*MapProfile[K], len(data)),
		def:      def,
		empty:    NewProfile[K](nil, def),
	}
	for entity, values := range data {
		ds.profiles[entity] = NewProfile(values, def)
	}
	ds.keys = sortedKeys(ds.profiles)
	return ds
}

// Keys implements Dataset. The returned slice must not be modified.
func (d *MapDataset[K]) Keys() []K {
	return d.keys
}

// Profile implements Dataset.
func (d *MapDataset[K]) Profile(key K) Profile[K] {
	if p, ok := d.profiles[key]; ok {
		return p
	}
	return d.empty
}

// Has reports whether key is an entity of the dataset.
func (d *MapDataset[K]) Has(key K) bool {
	_, ok := d.profiles[key]
	return ok
}

// Len returns the number of entities.
func (d *MapDataset[K]) Len() int {
	return len(d.keys)
}

// Default returns the rating reported for absent keys.
func (d *MapDataset[K]) Default() float64 {
	return d.def
}

// All iterates the dataset in key order.
func All[K cmp.Ordered](ds Dataset[K]) iter.Seq2[K, Profile[K]] {
	return func(yield func(K, Profile[K]) bool) {
		for _, k := range ds.Keys() {
			if !yield(k, ds.Profile(k)) {
				return
			}
		}
	}
}

// Transpose inverts the outer and inner keys of ds, turning ratings by
// user into ratings by item and vice versa. The default rating is carried
// over when ds exposes one.
func Transpose[K cmp.Ordered](ds Dataset[K]) *MapDataset[K] {
	def := 0.0
	if d, ok := ds.(defaulter); ok {
		def = d.Default()
	}

	out := make(map[K]map[K]float64)
	for entity, p := range All(ds) {
		for _, k := range p.Keys() {
			inner, ok := out[k]
			if !ok {
				inner = make(map[K]float64)
				out[k] = inner
			}
			inner[entity] = p.Get(k)
		}
	}
	return NewDataset(out, def)
}

// FromMatrix builds a dataset from dense rows. Row i and column j become
// keys i+1 and j+1; zero cells are dropped.
func FromMatrix(rows [][]float64) *MapDataset[int64] {
	data := make(map[int64]map[int64]float64, len(rows))
	for i, row := range rows {
		inner := make(map[int64]float64, len(row))
		for j, v := range row {
			if v != 0 {
				inner[int64(j+1)] = v
			}
		}
		data[int64(i+1)] = inner
	}
	return NewDataset(data, 0)
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

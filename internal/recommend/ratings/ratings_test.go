// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package ratings

import (
	"cmp"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewProfile_DropsDefault(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]float64
		def      float64
		wantKeys []string
	}{
		{
			name:     "zero default drops zeros",
			values:   map[string]float64{"a": 1, "b": 0, "c": 3},
			def:      0,
			wantKeys: []string{"a", "c"},
		},
		{
			name:     "nonzero default drops matching entries",
			values:   map[string]float64{"a": 2.5, "b": 0, "c": 2.5},
			def:      2.5,
			wantKeys: []string{"b"},
		},
		{
			name:     "nil map",
			values:   nil,
			def:      0,
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProfile(tt.values, tt.def)
			if got := p.Keys(); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", got, tt.wantKeys)
			}
		})
	}
}

func TestMapProfile_GetDefault(t *testing.T) {
	p := NewProfile(map[string]float64{"a": 4}, -1)

	if got := p.Get("a"); got != 4 {
		t.Errorf("Get(a) = %v, want 4", got)
	}
	if got := p.Get("missing"); got != -1 {
		t.Errorf("Get(missing) = %v, want -1", got)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
	if p.Default() != -1 {
		t.Errorf("Default() = %v, want -1", p.Default())
	}
}

func TestMapDataset(t *testing.T) {
	ds := NewDataset(map[string]map[string]float64{
		"z": {"a": 1},
		"x": {"b": 2},
		"y": {},
	}, 0)

	if got, want := ds.Keys(), []string{"x", "y", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if !ds.Has("y") {
		t.Error("Has(y) = false, entity with empty profile must be kept")
	}
	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ds.Len())
	}

	missing := ds.Profile("nope")
	if len(missing.Keys()) != 0 {
		t.Errorf("Profile(nope).Keys() = %v, want empty", missing.Keys())
	}
	if missing.Get("a") != 0 {
		t.Errorf("Profile(nope).Get(a) = %v, want default 0", missing.Get("a"))
	}
}

// nested flattens ds into the nested-map form NewDataset accepts.
func nested[K cmp.Ordered](ds Dataset[K]) map[K]map[K]float64 {
	out := make(map[K]map[K]float64)
	for entity, p := range All(ds) {
		inner := make(map[K]float64, len(p.Keys()))
		for _, k := range p.Keys() {
			inner[k] = p.Get(k)
		}
		out[entity] = inner
	}
	return out
}

func TestNewDataset_CopiesInput(t *testing.T) {
	src := map[int64]map[int64]float64{1: {10: 5}}
	ds := NewDataset(src, 0)

	src[1][10] = 99
	src[2] = map[int64]float64{10: 1}
	if got := ds.Profile(1).Get(10); got != 5 {
		t.Errorf("dataset aliased its input: Get = %v, want 5", got)
	}
	if ds.Has(2) {
		t.Error("Has(2) = true after mutating the input, want false")
	}
}

func TestTranspose(t *testing.T) {
	byUser := NewDataset(map[string]map[string]float64{
		"alice": {"dune": 5, "alien": 3},
		"bob":   {"dune": 4},
	}, 0)

	byItem := Transpose[string](byUser)

	want := map[string]map[string]float64{
		"alien": {"alice": 3},
		"dune":  {"alice": 5, "bob": 4},
	}
	if got := nested[string](byItem); !reflect.DeepEqual(got, want) {
		t.Errorf("Transpose() = %v, want %v", got, want)
	}

	back := Transpose[string](byItem)
	if got := nested[string](back); !reflect.DeepEqual(got, nested[string](byUser)) {
		t.Errorf("Transpose(Transpose()) = %v, want %v", got, nested[string](byUser))
	}
}

func TestTranspose_CarriesDefault(t *testing.T) {
	ds := NewDataset(map[string]map[string]float64{"u": {"i": 1}}, 3)
	if got := Transpose[string](ds).Default(); got != 3 {
		t.Errorf("Default() = %v, want 3", got)
	}
}

func TestFromMatrix(t *testing.T) {
	ds := FromMatrix([][]float64{
		{1, 0, 3},
		{0, 0, 0},
	})

	want := map[int64]map[int64]float64{
		1: {1: 1, 3: 3},
		2: {},
	}
	if got := nested[int64](ds); !reflect.DeepEqual(got, want) {
		t.Errorf("FromMatrix() = %v, want %v", got, want)
	}
}

func TestValuesAndAll(t *testing.T) {
	ds := NewDataset(map[string]map[string]float64{
		"b": {"y": 2, "x": 1},
		"a": {"z": 3},
	}, 0)

	if got, want := Values(ds.Profile("b")), []float64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}

	var order []string
	for k := range All[string](ds) {
		order = append(order, k)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(order, want) {
		t.Errorf("All() order = %v, want %v", order, want)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder[int64](0)
	b.SetMax(1, 100, 1)
	b.SetMax(1, 100, 5)
	b.SetMax(1, 100, 1)
	b.Set(2, 100, 3)
	b.Set(2, 100, 2)
	b.AddEntity(3)

	want := map[int64]map[int64]float64{
		1: {100: 5},
		2: {100: 2},
		3: {},
	}
	if got := nested[int64](b.Build()); !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

// countingDataset counts Profile calls to observe caching.
type countingDataset struct {
	*MapDataset[string]
	calls int
}

func (c *countingDataset) Profile(key string) Profile[string] {
	c.calls++
	return c.MapDataset.Profile(key)
}

func TestCached(t *testing.T) {
	inner := &countingDataset{MapDataset: NewDataset(map[string]map[string]float64{
		"a": {"x": 1},
		"b": {"x": 2},
	}, 0)}
	ds := NewCached[string](inner, 10, time.Minute)

	for i := 0; i < 3; i++ {
		if got := ds.Profile("a").Get("x"); got != 1 {
			t.Fatalf("Profile(a).Get(x) = %v, want 1", got)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner Profile called %d times, want 1", inner.calls)
	}

	ds.Invalidate("a")
	ds.Profile("a")
	if inner.calls != 2 {
		t.Errorf("inner Profile called %d times after Invalidate, want 2", inner.calls)
	}

	if got := ds.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	if stats := ds.Stats(); stats.Hits != 2 {
		t.Errorf("Stats().Hits = %d, want 2", stats.Hits)
	}
}

// flakyView fails lookups of the keys in broken.
type flakyView struct {
	*countingDataset
	broken map[string]bool
	err    error
}

func (f *flakyView) Profile(key string) Profile[string] {
	if f.broken[key] {
		f.err = errors.New("query failed")
		return NewProfile[string](nil, 0)
	}
	return f.countingDataset.Profile(key)
}

func (f *flakyView) Err() error {
	return f.err
}

func TestProfileCache_SharedAcrossViews(t *testing.T) {
	pc := NewProfileCache[string](10, time.Minute)
	data := map[string]map[string]float64{"a": {"x": 1}, "b": {"x": 2}}

	first := &countingDataset{MapDataset: NewDataset(data, 0)}
	pc.Wrap(first).Profile("a")

	second := &countingDataset{MapDataset: NewDataset(data, 0)}
	ds := pc.Wrap(second)
	if got := ds.Profile("a").Get("x"); got != 1 {
		t.Errorf("Profile(a).Get(x) = %v, want 1", got)
	}
	if second.calls != 0 {
		t.Errorf("second view queried %d times, want 0", second.calls)
	}
	if ds.Err() != nil {
		t.Errorf("Err() = %v, want nil for a plain dataset", ds.Err())
	}

	pc.Invalidate("a")
	ds.Profile("a")
	if second.calls != 1 {
		t.Errorf("second view queried %d times after Invalidate, want 1", second.calls)
	}
}

func TestProfileCache_SkipsFailedLookups(t *testing.T) {
	pc := NewProfileCache[string](10, time.Minute)
	view := &flakyView{
		countingDataset: &countingDataset{MapDataset: NewDataset(map[string]map[string]float64{"a": {"x": 1}}, 0)},
		broken:          map[string]bool{"a": true},
	}

	ds := pc.Wrap(view)
	ds.Profile("a")
	if ds.Err() == nil {
		t.Fatal("Err() = nil after a failed lookup")
	}

	healthy := &countingDataset{MapDataset: NewDataset(map[string]map[string]float64{"a": {"x": 1}}, 0)}
	if got := pc.Wrap(healthy).Profile("a").Get("x"); got != 1 {
		t.Errorf("Profile(a).Get(x) = %v, want 1: failed lookup was cached", got)
	}
}

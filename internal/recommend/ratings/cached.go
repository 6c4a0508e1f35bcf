// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package ratings

import (
	"cmp"
	"sync"
	"time"

	"github.com/tomtom215/simrec/internal/cache"
)

// View is a Dataset whose profiles are read from an external store on
// demand. A failed lookup yields an empty profile; Err reports the first
// failure so callers can discard results computed from it.
type View[K cmp.Ordered] interface {
	Dataset[K]
	Err() error
}

// ProfileCache holds profiles across the datasets it wraps, so that views
// built for different tasks share lookups of the same entity.
type ProfileCache[K cmp.Ordered] struct {
	profiles *cache.LRU[K, Profile[K]]
}

// NewProfileCache returns a cache of at most capacity profiles, each kept
// for ttl.
func NewProfileCache[K cmp.Ordered](capacity int, ttl time.Duration) *ProfileCache[K] {
	return &ProfileCache[K]{profiles: cache.NewLRU[K, Profile[K]](capacity, ttl)}
}

// Wrap returns inner with Profile lookups served from the cache.
func (pc *ProfileCache[K]) Wrap(inner Dataset[K]) *Cached[K] {
	return &Cached[K]{inner: inner, cache: pc}
}

// Invalidate drops the cached profile of key.
func (pc *ProfileCache[K]) Invalidate(key K) {
	pc.profiles.Remove(key)
}

// Stats exposes the underlying cache counters.
func (pc *ProfileCache[K]) Stats() cache.Stats {
	return pc.profiles.Stats()
}

// Cached memoizes Profile lookups of a Dataset whose profiles are expensive
// to produce. Keys are fetched once per Cached value. Profiles read while
// the inner View reports an error are not cached.
type Cached[K cmp.Ordered] struct {
	inner Dataset[K]
	cache *ProfileCache[K]

	keysOnce sync.Once
	keys     []K
}

// NewCached wraps inner with a private cache of the given capacity and TTL.
func NewCached[K cmp.Ordered](inner Dataset[K], capacity int, ttl time.Duration) *Cached[K] {
	return NewProfileCache[K](capacity, ttl).Wrap(inner)
}

// Keys implements Dataset.
func (c *Cached[K]) Keys() []K {
	c.keysOnce.Do(func() {
		c.keys = c.inner.Keys()
	})
	return c.keys
}

// Profile implements Dataset.
func (c *Cached[K]) Profile(key K) Profile[K] {
	if p, ok := c.cache.profiles.Get(key); ok {
		return p
	}
	p := c.inner.Profile(key)
	if c.Err() == nil {
		c.cache.profiles.Add(key, p)
	}
	return p
}

// Err implements View. Datasets that cannot fail report nil.
func (c *Cached[K]) Err() error {
	if v, ok := c.inner.(View[K]); ok {
		return v.Err()
	}
	return nil
}

// Invalidate drops a single cached profile.
func (c *Cached[K]) Invalidate(key K) {
	c.cache.Invalidate(key)
}

// Stats exposes the underlying cache counters.
func (c *Cached[K]) Stats() cache.Stats {
	return c.cache.Stats()
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package pairstore persists item similarity scores in BadgerDB.
//
// Each unordered pair is stored once under its canonical key. The ranked
// neighbour list of an item lives under its adjacency prefix, so it is a
// single prefix scan away:
//
//	pair:<low><high>  -> {"score":..., "updated_at":...}
//	adj:<a><b>        -> same record, b is a stored neighbour of a
//
// Assign owns adj:<key>* and replaces it wholesale, so a stored list always
// equals the last list assigned. Put records a pair for both sides.
//
// Keys are encoded as 8 big-endian bytes with the sign bit flipped, so
// Badger's byte order matches numeric order.
//
// Store implements recommend.PairWriter[int64] and
// recommend.IndexWriter[int64], so the engine can stream results straight
// into it. Writing the same scores twice leaves the store unchanged, which
// makes recomputation idempotent.
package pairstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/metrics"
	"github.com/tomtom215/simrec/internal/recommend"
	"github.com/tomtom215/simrec/internal/validation"
)

var (
	// ErrPairOrder is returned when a pair is not in canonical order.
	ErrPairOrder = errors.New("pair must satisfy low < high")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pair store is closed")
)

var (
	prefixPair = []byte("pair:")
	prefixAdj  = []byte("adj:")
)

const (
	gcRatio            = 0.5
	maxConflictRetries = 10
)

// record is the stored value of a pair.
type record struct {
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats holds store counters since Open.
type Stats struct {
	PairsWritten   int64
	IndexesWritten int64
}

// Store is a BadgerDB-backed similarity pair store. It is safe for
// concurrent use.
type Store struct {
	db     *badger.DB
	cfg    config.PairStoreConfig
	logger zerolog.Logger
	now    func() time.Time

	pairsWritten   atomic.Int64
	indexesWritten atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store described by cfg.
func Open(cfg *config.PairStoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.MemTableSize > 0 {
		opts.MemTableSize = cfg.MemTableSize
	}
	opts.NumCompactors = max(cfg.NumCompactors, 2)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		cfg:    *cfg,
		logger: logging.WithComponent("pairstore"),
		now:    time.Now,
	}
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Pair store opened")
	return s, nil
}

// encodeKey maps k to 8 bytes whose byte order matches numeric order.
func encodeKey(k int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k)^(1<<63))
	return b[:]
}

func decodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

func pairKey(low, high int64) []byte {
	return concat(prefixPair, encodeKey(low), encodeKey(high))
}

func adjKey(a, b int64) []byte {
	return concat(prefixAdj, encodeKey(a), encodeKey(b))
}

func adjPrefix(a int64) []byte {
	return concat(prefixAdj, encodeKey(a))
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Put stores the score of a canonical pair on both items' neighbour lists.
// Non-canonical pairs are
// rejected with a *validation.ValidationError wrapping ErrPairOrder.
func (s *Store) Put(pair recommend.PairKey[int64], score float64) error {
	if !pair.Canonical() {
		return validation.NewFieldError("pair", "canonical", pair.String(), ErrPairOrder)
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	err := s.setPair(wb, pair.Low, pair.High, score)
	if err == nil {
		err = wb.Flush()
	}
	metrics.RecordPairStoreWrite("pair", 1, err)
	if err != nil {
		return fmt.Errorf("put %v: %w", pair, err)
	}
	s.pairsWritten.Add(1)
	return nil
}

// Assign replaces the stored neighbours of key with ranked in one
// transaction. Neighbours missing from ranked are removed; their pair record
// is kept only while the other item still lists key.
func (s *Store) Assign(key int64, ranked []recommend.Scored[int64]) error {
	for _, n := range ranked {
		if n.Key == key {
			return fmt.Errorf("assign %d: %w", key, validation.NewFieldError("neighbour", "ne", n.Key, recommend.ErrSelfPair))
		}
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	keep := make(map[int64]struct{}, len(ranked))
	for _, n := range ranked {
		keep[n.Key] = struct{}{}
	}

	var dropped int
	err := s.update(func(txn *badger.Txn) error {
		dropped = 0
		for _, other := range neighbourKeys(txn, key) {
			if _, ok := keep[other]; ok {
				continue
			}
			if err := s.unlink(txn, key, other); err != nil {
				return err
			}
			dropped++
		}

		now := s.now().UTC()
		for _, n := range ranked {
			data, err := json.Marshal(record{Score: n.Score, UpdatedAt: now})
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			low, high := min(key, n.Key), max(key, n.Key)
			if err := txn.Set(adjKey(key, n.Key), data); err != nil {
				return err
			}
			if err := txn.Set(pairKey(low, high), data); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordPairStoreWrite("index", len(ranked), err)
	if err != nil {
		return fmt.Errorf("assign %d: %w", key, err)
	}

	s.pairsWritten.Add(int64(len(ranked)))
	s.indexesWritten.Add(1)
	s.logger.Debug().
		Int64("key", key).
		Int("neighbours", len(ranked)).
		Int("dropped", dropped).
		Msg("Index entry stored")
	return nil
}

// Retain removes the neighbour lists of every stored item not in keys,
// along with pairs no remaining list refers to. It returns the number of
// items removed. A full rebuild calls it so that deleted items disappear.
func (s *Store) Retain(keys []int64) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	live := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		live[k] = struct{}{}
	}

	var removed map[int64]struct{}
	err := s.update(func(txn *badger.Txn) error {
		removed = map[int64]struct{}{}
		for _, e := range staleAdjacency(txn, live) {
			removed[e[0]] = struct{}{}
			if err := s.unlink(txn, e[0], e[1]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("retain: %w", err)
	}
	if len(removed) > 0 {
		s.logger.Info().Int("items", len(removed)).Msg("Stale neighbour lists removed")
	}
	return len(removed), nil
}

// update runs fn in a read-write transaction, retrying when a concurrent
// writer touched the same keys.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// unlink deletes adj:<key><other> and, unless other still lists key, the
// pair record.
func (s *Store) unlink(txn *badger.Txn, key, other int64) error {
	if err := txn.Delete(adjKey(key, other)); err != nil {
		return err
	}
	_, err := txn.Get(adjKey(other, key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return txn.Delete(pairKey(min(key, other), max(key, other)))
	case err != nil:
		return err
	}
	return nil
}

// neighbourKeys lists the stored neighbours of key.
func neighbourKeys(txn *badger.Txn, key int64) []int64 {
	prefix := adjPrefix(key)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []int64
	for it.Rewind(); it.Valid(); it.Next() {
		out = append(out, decodeKey(it.Item().Key()[len(prefix):]))
	}
	return out
}

// staleAdjacency lists the (item, neighbour) entries whose item is not live.
func staleAdjacency(txn *badger.Txn, live map[int64]struct{}) [][2]int64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefixAdj
	it := txn.NewIterator(opts)
	defer it.Close()

	var out [][2]int64
	for it.Rewind(); it.Valid(); it.Next() {
		k := it.Item().Key()[len(prefixAdj):]
		a := decodeKey(k[:8])
		if _, ok := live[a]; ok {
			continue
		}
		out = append(out, [2]int64{a, decodeKey(k[8:16])})
	}
	return out
}

// setPair writes the canonical record and both adjacency entries.
func (s *Store) setPair(wb *badger.WriteBatch, low, high int64, score float64) error {
	data, err := json.Marshal(record{Score: score, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	for _, k := range [][]byte{pairKey(low, high), adjKey(low, high), adjKey(high, low)} {
		if err := wb.Set(k, data); err != nil {
			return err
		}
	}
	return nil
}

// Score returns the stored score of the pair {a, b}.
func (s *Store) Score(a, b int64) (float64, bool, error) {
	pair, err := recommend.NewPairKey(a, b)
	if err != nil {
		return 0, false, err
	}
	if err := s.checkOpen(); err != nil {
		return 0, false, err
	}

	var (
		rec   record
		found bool
	)
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(pair.Low, pair.High))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("get %v: %w", pair, err)
	}
	return rec.Score, found, nil
}

// Similar returns the stored neighbours of key, best first. A positive
// limit truncates the result.
func (s *Store) Similar(key int64, limit int) ([]recommend.Scored[int64], error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []recommend.Scored[int64]
	prefix := adjPrefix(key)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			other := decodeKey(item.Key()[len(prefix):])
			var rec record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode neighbour %d: %w", other, err)
			}
			out = append(out, recommend.Scored[int64]{Score: rec.Score, Key: other})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("similar %d: %w", key, err)
	}

	recommend.SortScored(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Index loads the whole adjacency list as a similarity index.
func (s *Store) Index() (recommend.SimilarityIndex[int64], error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	idx := make(recommend.SimilarityIndex[int64])
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefixAdj); it.ValidForPrefix(prefixAdj); it.Next() {
			item := it.Item()
			k := item.Key()[len(prefixAdj):]
			a, b := decodeKey(k[:8]), decodeKey(k[8:16])
			var rec record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode pair (%d, %d): %w", a, b, err)
			}
			idx[a] = append(idx[a], recommend.Scored[int64]{Score: rec.Score, Key: b})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	for _, ranked := range idx {
		recommend.SortScored(ranked)
	}
	return idx, nil
}

// Count returns the number of stored pairs.
func (s *Store) Count() (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.countPrefix(prefixPair)
}

func (s *Store) countPrefix(prefix []byte) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Clear removes every stored pair and returns how many there were. With
// dryRun set nothing is deleted.
func (s *Store) Clear(dryRun bool) (int, error) {
	n, err := s.Count()
	if err != nil || dryRun {
		return n, err
	}
	if err := s.db.DropPrefix(prefixPair, prefixAdj); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	s.logger.Info().Int("pairs", n).Msg("Pair store cleared")
	return n, nil
}

// Stats returns write counters since Open.
func (s *Store) Stats() Stats {
	return Stats{
		PairsWritten:   s.pairsWritten.Load(),
		IndexesWritten: s.indexesWritten.Load(),
	}
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
func (s *Store) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.cfg.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the underlying database. Calling Close twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("Pair store closed")
	return nil
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package ratings defines the data-access contract the similarity engine
// operates over.
//
// A Dataset maps entity keys to Profiles; a Profile maps a second-level key
// to a rating and answers with its default for keys it does not hold. The
// two levels are separate types so that the same engine code can run over an
// in-memory matrix or over a computed view backed by an external store.
//
// Which axis is "item" and which is "rater" is up to the caller: Transpose
// turns ratings-by-user into ratings-by-item and back.
//
//	ds := ratings.NewDataset(map[string]map[string]float64{
//	    "alice": {"dune": 5, "alien": 3},
//	    "bob":   {"dune": 4},
//	}, 0)
//	byItem := ratings.Transpose(ds)
package ratings

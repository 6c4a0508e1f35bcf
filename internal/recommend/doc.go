// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package recommend computes item-to-item similarity and ranks
// recommendations from sparse rating data.
//
// # Architecture
//
// The package is layered leaf to root:
//
//   - similarity: vector math and the cosine, Sørensen–Dice, Pearson and
//     Euclidean-based measures
//   - ratings: the Dataset/Profile data-access contract
//   - recommend (this package): pairwise scoring, similarity indices and
//     recommendation ranking
//
// The core functions (ComputeAllPairwise, ComputeSimilarityIndex,
// RecommendFromProfiles, RecommendFromDataset) are synchronous and pure:
// they never mutate the dataset and return identical results for identical
// inputs. The similarity measure is always an explicit argument.
//
// # Ordering
//
// Ranked lists are sorted by descending score. Equal scores are ordered by
// descending key, which makes results reproducible across runs.
//
// # Write Targets
//
// Results may be streamed to a PairWriter or IndexWriter instead of being
// accumulated in memory. This is how computed scores reach persistent
// storage without the engine knowing about it.
//
// # Usage
//
//	byItem := ratings.Transpose(byUser)
//	idx := recommend.ComputeSimilarityIndex(byItem, similarity.Cosine[int64])
//	recs := recommend.RecommendFromProfiles(idx, byUser.Profile(userID), recommend.ModeWeightedAverage)
//
// Engine wraps the same functions with a configured metric and mode, output
// truncation, structured logging and Prometheus metrics:
//
//	engine, err := recommend.NewEngine[int64](recommend.DefaultConfig(), logger)
//	recs := engine.Recommend(engine.Index(byItem), byUser.Profile(userID))
package recommend

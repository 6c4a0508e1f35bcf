// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

// Package main is the simrec command line.
//
// Simrec computes item-to-item similarity over a ratings dataset and
// recommends items from the resulting similarity index. Ratings come either
// from a MovieLens 100K directory (offline runs) or from the interaction
// database, where views and favourites are folded into weighted ratings.
//
// # Commands
//
//	simrec similar ITEM            items most similar to ITEM
//	simrec pairs                   every pair score, optionally stored
//	simrec index                   rebuild the stored similarity index
//	simrec recommend USER          recommendations for USER
//	simrec record KIND RATER ITEM  record an interaction
//	simrec clear                   wipe stored scores (and interactions)
//	simrec backup FILE             write a pair store backup
//	simrec restore FILE            load a pair store backup
//	simrec worker                  run the recompute worker
//
// # Configuration
//
// Configuration is loaded via koanf (defaults, then config file, then
// environment). Engine settings can be overridden per run:
//
//	simrec --metric pearson --mode raw_sum --top-k 10 similar 42
//
// # Build Tags
//
//	go build -tags nats ./cmd/simrec   # enable the NATS JetStream transport
package main

func main() {
	Execute()
}

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

/*
Package recompute keeps the stored similarity index current as interactions
arrive.

Recording an interaction publishes a RatingChanged event. A Watermill router
consumes those events and, for each one, recomputes the neighbours of the
changed item from its rating neighbourhood and writes them to the pair
store.

# Message Flow

	Publisher.Publish
	      |
	      v
	Transport (gochannel, or NATS JetStream with -tags nats)
	      |
	      v
	Router middleware (outermost first):
	  Deduplicator  drops events whose ID was seen within DedupTTL
	  (forget)      releases the ID when the poison publish also failed
	  PoisonQueue   forwards events that exhausted their retries
	  Throttle      caps messages per second (optional)
	  Retry         exponential backoff
	  Recoverer     turns handler panics into errors
	      |
	      v
	Handler.Handle -> rate limiter -> settle delay -> NeighbourhoodView
	               -> profile cache (changed item invalidated)
	               -> Engine.Similar -> IndexWriter.Assign

Recomputing an item twice writes the same rows, so redelivery is harmless.

# Transports

The default transport is an in-process gochannel, which suits a single
worker process. Building with -tags nats adds a JetStream transport with a
durable queue group so several workers can share the load.
*/
package recompute

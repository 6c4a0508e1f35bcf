// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

/*
Package services adapts worker components to suture's Serve(ctx) error
lifecycle.

  - RecomputeService runs a recompute worker, building a fresh one on every
    restart since a Watermill router cannot be run twice.
  - RebuildService recomputes the whole similarity index on a ticker.
  - PairStoreGCService runs Badger value log GC on a ticker.
  - HTTPServerService serves the ops router with graceful shutdown.

The wrappers depend on small interfaces rather than concrete types, so they
are tested with fakes and do not import the packages they supervise.
*/
package services

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

/*
Package supervisor runs the long-lived parts of the worker process under a
suture v4 supervisor tree.

	RootSupervisor ("simrec")
	├── data-layer
	│   └── PairStoreGCService
	├── queue-layer
	│   ├── RecomputeService
	│   └── RebuildService
	└── ops-layer
	    └── HTTPServerService (/metrics, /healthz)

Each layer counts failures on its own, so a recompute crash loop backs off
without taking the ops endpoints down. Supervisor events are logged through
sutureslog into the zerolog-backed slog handler.

Basic setup:

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewSlogLogger("supervisor"),
	    supervisor.TreeConfigFrom(&cfg.Supervisor),
	)
	if err != nil {
	    return err
	}
	tree.AddQueueService(services.NewRecomputeService(newWorker))
	tree.AddOpsService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor

// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/recommend"
)

const handlerName = "recompute_item"

// Worker wires a transport, router, handler and publisher together.
type Worker struct {
	transport *Transport
	router    *Router
	handler   *Handler
	publisher *Publisher
}

// WorkerStats holds worker counters.
type WorkerStats struct {
	Processed   int64 `json:"processed"`
	Failed      int64 `json:"failed"`
	Duplicates  int64 `json:"duplicates"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
}

// NewWorker opens the configured transport and registers the recompute
// handler. The worker does not consume until Run is called.
func NewWorker(
	cfg *config.Config,
	source Source,
	engine *recommend.Engine[int64],
	store recommend.IndexWriter[int64],
) (*Worker, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger("recompute"))

	transport, err := NewTransport(&cfg.Recompute, &cfg.NATS, logger)
	if err != nil {
		return nil, err
	}
	return NewWorkerWithTransport(&cfg.Recompute, transport, source, engine, store, logger)
}

// NewWorkerWithTransport is NewWorker over an already open transport.
func NewWorkerWithTransport(
	cfg *config.RecomputeConfig,
	transport *Transport,
	source Source,
	engine *recommend.Engine[int64],
	store recommend.IndexWriter[int64],
	logger watermill.LoggerAdapter,
) (*Worker, error) {
	router, err := NewRouter(cfg, transport.Publisher, logger)
	if err != nil {
		return nil, errors.Join(err, transport.Close())
	}

	handler := NewHandler(cfg, source, engine, store)
	router.AddConsumerHandler(handlerName, cfg.Topic, transport.Subscriber, handler.Handle)

	return &Worker{
		transport: transport,
		router:    router,
		handler:   handler,
		publisher: NewPublisher(transport.Publisher, cfg.Topic),
	}, nil
}

// Run consumes events until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.router.Run(ctx); err != nil {
		return fmt.Errorf("recompute router: %w", err)
	}
	return nil
}

// Running returns a channel closed once the worker is consuming.
func (w *Worker) Running() <-chan struct{} {
	return w.router.Running()
}

// IsRunning reports whether the worker is consuming.
func (w *Worker) IsRunning() bool {
	return w.router.IsRunning()
}

// Publisher returns a publisher on the worker's transport.
func (w *Worker) Publisher() *Publisher {
	return w.publisher
}

// Handler returns the worker's handler.
func (w *Worker) Handler() *Handler {
	return w.handler
}

// Stats returns the worker counters.
func (w *Worker) Stats() WorkerStats {
	cs := w.handler.CacheStats()
	return WorkerStats{
		Processed:   w.handler.Processed(),
		Failed:      w.handler.Failed(),
		Duplicates:  w.router.Deduplicator().Duplicates(),
		CacheHits:   cs.Hits,
		CacheMisses: cs.Misses,
	}
}

// Close stops the router and closes the transport.
func (w *Worker) Close() error {
	return errors.Join(w.router.Close(), w.transport.Close())
}

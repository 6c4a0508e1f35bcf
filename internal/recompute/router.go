// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/tomtom215/simrec/internal/cache"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/metrics"
)

const (
	routerCloseTimeout = 30 * time.Second
	dedupTimeout       = time.Minute
	retryMultiplier    = 2.0
)

// Deduplicator remembers event IDs for a bounded time. It implements
// middleware.ExpiringKeyRepository.
type Deduplicator struct {
	seen       *cache.LRU[string, struct{}]
	duplicates atomic.Int64
}

// NewDeduplicator returns a deduplicator holding at most capacity keys for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{seen: cache.NewLRU[string, struct{}](capacity, ttl)}
}

// IsDuplicate reports whether key was seen within the TTL, and records it
// otherwise.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	if !d.seen.IsDuplicate(key, struct{}{}) {
		return false, nil
	}
	d.duplicates.Add(1)
	metrics.RecordRecomputeDuplicate()
	return true, nil
}

// Forget drops key so the next delivery of that event is processed.
func (d *Deduplicator) Forget(key string) {
	d.seen.Remove(key)
}

// Duplicates returns the number of dropped duplicates.
func (d *Deduplicator) Duplicates() int64 {
	return d.duplicates.Load()
}

// Router wraps the Watermill router with the recompute middleware stack.
type Router struct {
	router  *message.Router
	dedup   *Deduplicator
	logger  watermill.LoggerAdapter
	running atomic.Bool
}

// NewRouter builds a router configured from cfg. Failed messages go to
// cfg.PoisonTopic on poison when poison is non-nil.
func NewRouter(cfg *config.RecomputeConfig, poison message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router: wmRouter,
		dedup:  NewDeduplicator(cfg.DedupCapacity, cfg.DedupTTL),
		logger: logger,
	}

	// Added outermost first. Deduplication sits outside Retry so that a
	// retried attempt is not mistaken for a duplicate.
	dedup := middleware.Deduplicator{
		KeyFactory: eventKey,
		Repository: r.dedup,
		Timeout:    dedupTimeout,
	}
	wmRouter.AddMiddleware(dedup.Middleware)

	if poison != nil && cfg.PoisonTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poison, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		// An error past the poison queue means the event reached neither the
		// index nor the poison topic. It is nacked, and its redelivery must
		// not count as a duplicate.
		wmRouter.AddMiddleware(r.forgetFailed)
		wmRouter.AddMiddleware(poisonQueue)
	}

	if cfg.Throttle > 0 {
		throttle := middleware.NewThrottle(cfg.Throttle, time.Second)
		wmRouter.AddMiddleware(throttle.Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      retryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

func (r *Router) forgetFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		if err != nil {
			if key, keyErr := eventKey(msg); keyErr == nil {
				r.dedup.Forget(key)
			}
			r.logger.Error("Event not poisoned, releasing for redelivery", err, watermill.LogFields{
				"message_uuid": msg.UUID,
			})
		}
		return produced, err
	}
}

// AddConsumerHandler registers a handler for topic that publishes nothing.
func (r *Router) AddConsumerHandler(
	name string,
	topic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	return r.router.AddConsumerHandler(name, topic, subscriber, handler)
}

// Run processes messages until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel closed once every handler is subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is in progress.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// Deduplicator returns the router's deduplicator.
func (r *Router) Deduplicator() *Deduplicator {
	return r.dedup
}

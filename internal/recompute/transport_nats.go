// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

//go:build nats

package recompute

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	natsgo "github.com/nats-io/nats.go"
	"github.com/tomtom215/simrec/internal/config"
)

const (
	natsReconnectWait   = 2 * time.Second
	natsCloseTimeout    = 30 * time.Second
	natsMaxDeliver      = 10
	natsMaxAckPending   = 256
	natsSubscriberCount = 1
)

// newNATSTransport connects a JetStream publisher and a durable queue
// subscriber. Streams are provisioned on first use.
func newNATSTransport(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(natsReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.DurablePrefix,
		SubscribersCount: natsSubscriberCount,
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     natsCloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(natsMaxDeliver),
				natsgo.MaxAckPending(natsMaxAckPending),
				natsgo.AckWait(cfg.AckWait),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurablePrefix,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &Transport{Publisher: pub, Subscriber: sub}, nil
}

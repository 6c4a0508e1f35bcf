// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/tomtom215/simrec/internal/config"
)

// Transport names.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

var (
	// ErrUnknownTransport is returned for a transport name that is not
	// recognised.
	ErrUnknownTransport = errors.New("unknown recompute transport")

	// ErrNATSUnavailable is returned when the NATS transport is requested
	// from a binary built without the nats tag.
	ErrNATSUnavailable = errors.New("NATS transport requires building with -tags nats")
)

// Transport carries RatingChanged messages from publishers to the router.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewTransport opens the transport named by rc.Transport.
func NewTransport(rc *config.RecomputeConfig, nc *config.NATSConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	switch rc.Transport {
	case TransportChannel, "":
		return NewChannelTransport(rc.OutputBuffer, logger), nil
	case TransportNATS:
		return newNATSTransport(nc, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, rc.Transport)
	}
}

// NewChannelTransport returns an in-process transport. Messages published
// before a subscriber exists are dropped.
func NewChannelTransport(buffer int64, logger watermill.LoggerAdapter) *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, logger)
	return &Transport{Publisher: ch, Subscriber: ch}
}

// Close closes both ends of the transport.
func (t *Transport) Close() error {
	if any(t.Publisher) == any(t.Subscriber) {
		return t.Publisher.Close()
	}
	return errors.Join(t.Publisher.Close(), t.Subscriber.Close())
}

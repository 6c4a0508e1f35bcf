// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/tomtom215/simrec/internal/logging"
	"github.com/tomtom215/simrec/internal/metrics"
)

// Publisher sends RatingChanged events to the recompute topic.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher returns a publisher sending to topic on pub.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

// Publish sends ev.
func (p *Publisher) Publish(ctx context.Context, ev RatingChanged) error {
	msg, err := ev.Message()
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	metrics.RecordRecomputePublished()
	logging.Ctx(ctx).Debug().
		Str("event_id", ev.ID).
		Int64("item_id", ev.ItemID).
		Str("kind", ev.Kind).
		Msg("Rating change published")
	return nil
}

// ItemChanged publishes a new event for itemID.
func (p *Publisher) ItemChanged(ctx context.Context, itemID int64, kind string) error {
	return p.Publish(ctx, NewRatingChanged(itemID, kind))
}

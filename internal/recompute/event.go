// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package recompute

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tomtom215/simrec/internal/validation"
)

// Metadata keys set on every RatingChanged message.
const (
	MetadataEventID = "event_id"
	MetadataKind    = "kind"
	MetadataItemID  = "item_id"
)

// ErrMalformedEvent is returned for messages that do not decode to a valid
// RatingChanged.
var ErrMalformedEvent = errors.New("malformed rating event")

// RatingChanged announces that the ratings of an item changed. ID is the
// idempotency key: two events with the same ID are processed once.
type RatingChanged struct {
	ID         string    `json:"id" validate:"required,uuid"`
	ItemID     int64     `json:"item_id" validate:"gt=0"`
	Kind       string    `json:"kind,omitempty" validate:"max=32"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRatingChanged returns an event for itemID with a fresh ID.
func NewRatingChanged(itemID int64, kind string) RatingChanged {
	return RatingChanged{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

// Message encodes the event as a Watermill message whose UUID is the event ID.
func (e *RatingChanged) Message() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal rating event: %w", err)
	}
	msg := message.NewMessage(e.ID, payload)
	msg.Metadata.Set(MetadataEventID, e.ID)
	msg.Metadata.Set(MetadataItemID, fmt.Sprint(e.ItemID))
	if e.Kind != "" {
		msg.Metadata.Set(MetadataKind, e.Kind)
	}
	return msg, nil
}

// DecodeRatingChanged decodes and validates a message payload. A payload
// without an ID takes it from the message metadata.
func DecodeRatingChanged(msg *message.Message) (RatingChanged, error) {
	var ev RatingChanged
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if ev.ID == "" {
		ev.ID = msg.Metadata.Get(MetadataEventID)
	}
	if err := validation.ValidateStruct(&ev); err != nil {
		return ev, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	return ev, nil
}

// eventKey is the deduplication key of msg.
func eventKey(msg *message.Message) (string, error) {
	if id := msg.Metadata.Get(MetadataEventID); id != "" {
		return id, nil
	}
	return msg.UUID, nil
}

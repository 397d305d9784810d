package events

import (
	"encoding/json"
	"fmt"
)

// Event is the order domain event published through the outbox.
type Event struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Kind reports which wire form a record carried. Records arrive either
// bare (the event itself) or wrapped by a CDC-style envelope whose
// payload field holds the event serialized a second time.
type Kind int

const (
	KindBare Kind = iota
	KindEnveloped
)

type envelope struct {
	Payload string `json:"payload"`
}

// Decode resolves the two wire forms once: a non-empty payload string
// means the true event is nested inside it, otherwise the top-level
// object is the event.
func Decode(value []byte) (Event, Kind, error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Event{}, KindBare, fmt.Errorf("decode record: %w", err)
	}

	if env.Payload != "" {
		var evt Event
		if err := json.Unmarshal([]byte(env.Payload), &evt); err != nil {
			return Event{}, KindEnveloped, fmt.Errorf("decode envelope payload: %w", err)
		}
		return evt, KindEnveloped, nil
	}

	var evt Event
	if err := json.Unmarshal(value, &evt); err != nil {
		return Event{}, KindBare, fmt.Errorf("decode record: %w", err)
	}
	return evt, KindBare, nil
}

package outbox

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	AggregateOrder   = "order"
	TypeOrderCreated = "OrderCreated"
)

// Event is a domain event staged in outbox_event. A row is written in
// the same transaction as the business mutation it describes and is
// drained by an external relay; this service never reads rows back.
type Event struct {
	EventID       string
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
}

type orderCreatedPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// NewOrderCreated builds the creation event for an order. The payload
// shape is the hand-off contract with the relay and downstream consumers.
func NewOrderCreated(orderID, status string) (Event, error) {
	payload, err := json.Marshal(orderCreatedPayload{OrderID: orderID, Status: status})
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:       uuid.NewString(),
		AggregateType: AggregateOrder,
		AggregateID:   orderID,
		Type:          TypeOrderCreated,
		Payload:       payload,
	}, nil
}

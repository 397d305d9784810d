package outbox

import (
	"encoding/json"
	"testing"
)

func TestNewOrderCreated(t *testing.T) {
	evt, err := NewOrderCreated("abc123", "CREATED")
	if err != nil {
		t.Fatalf("NewOrderCreated failed: %v", err)
	}

	if evt.AggregateType != AggregateOrder {
		t.Fatalf("unexpected aggregate type: %q", evt.AggregateType)
	}
	if evt.AggregateID != "abc123" {
		t.Fatalf("unexpected aggregate id: %q", evt.AggregateID)
	}
	if evt.Type != TypeOrderCreated {
		t.Fatalf("unexpected type: %q", evt.Type)
	}
	if evt.EventID == "" {
		t.Fatal("expected non-empty event id")
	}

	var payload map[string]string
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if payload["orderId"] != "abc123" || payload["status"] != "CREATED" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestNewOrderCreatedUniqueEventIDs(t *testing.T) {
	a, err := NewOrderCreated("o1", "NEW")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewOrderCreated("o1", "NEW")
	if err != nil {
		t.Fatal(err)
	}
	if a.EventID == b.EventID {
		t.Fatal("event ids must be unique per staged event")
	}
}

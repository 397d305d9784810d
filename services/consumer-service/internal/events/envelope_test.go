package events

import "testing"

func TestDecodeBare(t *testing.T) {
	evt, kind, err := Decode([]byte(`{"orderId":"o2","status":"PAID"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if kind != KindBare {
		t.Fatalf("expected bare record, got kind %d", kind)
	}
	if evt.OrderID != "o2" || evt.Status != "PAID" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestDecodeEnveloped(t *testing.T) {
	raw := []byte(`{"payload": "{\"orderId\":\"o1\",\"status\":\"NEW\"}"}`)
	evt, kind, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if kind != KindEnveloped {
		t.Fatalf("expected enveloped record, got kind %d", kind)
	}
	if evt.OrderID != "o1" || evt.Status != "NEW" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestDecodeEmptyPayloadFieldIsBare(t *testing.T) {
	evt, kind, err := Decode([]byte(`{"orderId":"o3","status":"NEW","payload":""}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if kind != KindBare {
		t.Fatalf("empty payload field must fall through to bare, got kind %d", kind)
	}
	if evt.OrderID != "o3" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, err := Decode([]byte(`not json at all`)); err == nil {
		t.Fatal("expected error for malformed record")
	}
}

func TestDecodeMalformedEnvelopePayload(t *testing.T) {
	if _, _, err := Decode([]byte(`{"payload":"oops"}`)); err == nil {
		t.Fatal("expected error for malformed nested payload")
	}
}

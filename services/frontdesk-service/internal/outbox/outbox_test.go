package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/md-rashed-zaman/frontdesk/libs/kafkax"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

func TestBookingEvent_Changed(t *testing.T) {
	prev := model.Booking{
		ID:       "b1",
		RoomID:   "R1",
		CheckIn:  time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		Status:   model.BookingConfirmed,
	}
	cur := prev
	cur.RoomID = "R2"
	cur.CheckOut = time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC)

	evt, err := BookingEvent(EventBookingChanged, cur, &prev)
	if err != nil {
		t.Fatalf("BookingEvent: %v", err)
	}
	if evt.EventType != EventBookingChanged || evt.AggregateID != "b1" || evt.AggregateType != "booking" {
		t.Fatalf("unexpected envelope: %+v", evt)
	}

	var payload map[string]string
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload["room_id"] != "R2" || payload["previous_room_id"] != "R1" {
		t.Fatalf("unexpected rooms in payload: %v", payload)
	}
	if payload["check_out"] != "2024-01-26" || payload["previous_check_out"] != "2024-01-25" {
		t.Fatalf("unexpected dates in payload: %v", payload)
	}
}

func TestBookingEvent_CreatedOmitsPrevious(t *testing.T) {
	b := model.Booking{ID: "b2", RoomID: "R1", CheckIn: time.Now(), CheckOut: time.Now().Add(24 * time.Hour)}
	evt, err := BookingEvent(EventBookingCreated, b, nil)
	if err != nil {
		t.Fatalf("BookingEvent: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if _, ok := payload["previous_room_id"]; ok {
		t.Fatalf("created event must not carry previous fields: %v", payload)
	}
}

func TestToMessage(t *testing.T) {
	msg := toMessage(context.Background(), Record{
		ID:            7,
		EventID:       "evt-1",
		AggregateType: "booking",
		AggregateID:   "b1",
		EventType:     EventBookingCreated,
		Payload:       []byte(`{}`),
	})
	if msg.Topic != EventBookingCreated || string(msg.Key) != "b1" {
		t.Fatalf("unexpected message routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
	if got := kafkax.HeaderValue(msg.Headers, "event_id"); got != "evt-1" {
		t.Fatalf("expected event_id header, got %q", got)
	}
}

func TestToMessageCarriesStoredTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	msg := toMessage(context.Background(), Record{
		EventID:     "evt-2",
		AggregateID: "b1",
		EventType:   EventBookingChanged,
		Traceparent: traceparent,
	})
	if got := kafkax.HeaderValue(msg.Headers, "traceparent"); got != traceparent {
		t.Fatalf("expected the stored traceparent on the message, got %q", got)
	}
	if kafkax.HeaderValue(msg.Headers, "event_id") != "evt-2" || kafkax.HeaderValue(msg.Headers, "event_type") != EventBookingChanged {
		t.Fatalf("unexpected envelope headers %v", msg.Headers)
	}
}

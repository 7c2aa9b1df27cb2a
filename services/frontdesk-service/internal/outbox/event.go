package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

const (
	EventBookingCreated = "frontdesk.booking.created.v1"
	EventBookingChanged = "frontdesk.booking.changed.v1"
)

// Event is the envelope written to outbox_events. The Kafka topic equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type bookingPayload struct {
	BookingID        string `json:"booking_id"`
	RoomID           string `json:"room_id"`
	GuestID          string `json:"guest_id"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Status           string `json:"status"`
	PreviousRoomID   string `json:"previous_room_id,omitempty"`
	PreviousCheckIn  string `json:"previous_check_in,omitempty"`
	PreviousCheckOut string `json:"previous_check_out,omitempty"`
}

// BookingEvent builds the event for a new booking, or for an edited one when prev is non-nil.
func BookingEvent(eventType string, b model.Booking, prev *model.Booking) (Event, error) {
	p := bookingPayload{
		BookingID: b.ID,
		RoomID:    b.RoomID,
		GuestID:   b.GuestID,
		CheckIn:   b.CheckIn.Format(time.DateOnly),
		CheckOut:  b.CheckOut.Format(time.DateOnly),
		Status:    string(b.Status),
	}
	if prev != nil {
		p.PreviousRoomID = prev.RoomID
		p.PreviousCheckIn = prev.CheckIn.Format(time.DateOnly)
		p.PreviousCheckOut = prev.CheckOut.Format(time.DateOnly)
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}

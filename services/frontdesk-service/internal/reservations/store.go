package reservations

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/outbox"
)

// Store is the room and booking datastore behind the service.
type Store interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	// ListBookings returns bookings of any status overlapping [from, to).
	ListBookings(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// InTx runs fn in a transaction. fn's writes are discarded when it returns an error.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is a unit of work. LockRooms must be called before reading the bookings
// of a room that is about to be written, so no other writer can commit a
// booking for that room between the guard check and the write.
type Tx interface {
	LockRooms(ctx context.Context, roomIDs []string) error
	Rooms(ctx context.Context, roomIDs []string) ([]model.Room, error)
	RoomBookings(ctx context.Context, roomIDs []string) ([]model.Booking, error)
	// GetBooking returns guard.ErrUnknownBooking when id does not exist.
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	InsertBooking(ctx context.Context, b model.Booking) error
	UpdateBookingStay(ctx context.Context, b model.Booking) error
	InsertEvent(ctx context.Context, evt outbox.Event) error
}

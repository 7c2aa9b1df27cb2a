// Package guard is the single gate a booking must pass before a room
// assignment is committed. It inspects the snapshot it is given and holds no
// locks; callers make the check and the write atomic.
package guard

import (
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/availability"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

var (
	ErrRoomConflict   = errors.New("room already booked for these dates")
	ErrUnknownRoom    = errors.New("unknown room")
	ErrUnknownBooking = errors.New("unknown booking")
)

// ConflictError identifies the booking that blocks a requested assignment.
type ConflictError struct {
	BookingID string
	RoomID    string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s already booked for %s..%s (booking %s)",
		e.RoomID, e.CheckIn.Format(time.DateOnly), e.CheckOut.Format(time.DateOnly), e.BookingID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrRoomConflict
}

// Snapshot is the rooms and bookings the guard decides against.
type Snapshot struct {
	Rooms    []model.Room
	Bookings []model.Booking
}

// Assignment is a requested room and stay. ExcludingBookingID is set when an
// existing booking is being edited so it does not collide with itself.
type Assignment struct {
	RoomID             string
	CheckIn            time.Time
	CheckOut           time.Time
	ExcludingBookingID string
}

// CanAssign reports whether the assignment is free of conflicts.
func CanAssign(snap Snapshot, a Assignment) (bool, error) {
	_, conflict, err := check(snap, a)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// AssertNoConflict returns a *ConflictError naming the blocking booking when
// CanAssign would be false.
func AssertNoConflict(snap Snapshot, a Assignment) error {
	blocking, conflict, err := check(snap, a)
	if err != nil {
		return err
	}
	if conflict {
		return &ConflictError{
			BookingID: blocking.ID,
			RoomID:    a.RoomID,
			CheckIn:   a.CheckIn,
			CheckOut:  a.CheckOut,
		}
	}
	return nil
}

func check(snap Snapshot, a Assignment) (model.Booking, bool, error) {
	if err := interval.Validate(a.CheckIn, a.CheckOut); err != nil {
		return model.Booking{}, false, err
	}
	if !hasRoom(snap.Rooms, a.RoomID) {
		return model.Booking{}, false, fmt.Errorf("%w: %s", ErrUnknownRoom, a.RoomID)
	}
	if a.ExcludingBookingID != "" && !hasBooking(snap.Bookings, a.ExcludingBookingID) {
		return model.Booking{}, false, fmt.Errorf("%w: %s", ErrUnknownBooking, a.ExcludingBookingID)
	}
	blocking, conflict := availability.FirstOverlap(a.RoomID, a.CheckIn, a.CheckOut, snap.Bookings, a.ExcludingBookingID)
	return blocking, conflict, nil
}

func hasRoom(rooms []model.Room, id string) bool {
	for _, r := range rooms {
		if r.ID == id {
			return true
		}
	}
	return false
}

func hasBooking(bookings []model.Booking, id string) bool {
	for _, b := range bookings {
		if b.ID == id {
			return true
		}
	}
	return false
}

package model

import "time"

type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked-in"
	BookingCheckedOut BookingStatus = "checked-out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no-show"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// Booking occupies RoomID for the half-open range [CheckIn, CheckOut) while active.
// CheckIn and CheckOut are calendar dates at UTC midnight.
type Booking struct {
	ID        string
	RoomID    string
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	Status    BookingStatus
	CreatedAt time.Time
}

// Active reports whether the booking takes part in overlap and availability checks.
// Cancelled and no-show bookings are kept for history only.
func (b Booking) Active() bool {
	return b.Status != BookingCancelled && b.Status != BookingNoShow
}

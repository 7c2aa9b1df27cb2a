// Package availability answers which rooms are free for a stay. Occupancy is
// derived only from active bookings; a room's operational status is ignored
// here and filtered separately by callers that care about it.
package availability

import (
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

// IsRoomFree reports whether no active booking for roomID overlaps [checkIn, checkOut).
func IsRoomFree(roomID string, checkIn, checkOut time.Time, bookings []model.Booking) (bool, error) {
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return false, err
	}
	_, busy := FirstOverlap(roomID, checkIn, checkOut, bookings, "")
	return !busy, nil
}

// FindAvailableRooms returns the rooms free for [checkIn, checkOut) in input order.
// An empty roomType matches every room. Inputs are not modified.
func FindAvailableRooms(rooms []model.Room, bookings []model.Booking, checkIn, checkOut time.Time, roomType string) ([]model.Room, error) {
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return nil, err
	}

	busy := make(map[string]struct{})
	for _, b := range bookings {
		if b.Active() && interval.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			busy[b.RoomID] = struct{}{}
		}
	}

	free := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if roomType != "" && r.Type != roomType {
			continue
		}
		if _, taken := busy[r.ID]; taken {
			continue
		}
		free = append(free, r)
	}
	return free, nil
}

// FirstOverlap returns the first active booking for roomID overlapping
// [checkIn, checkOut), skipping the booking whose id equals excludeID.
func FirstOverlap(roomID string, checkIn, checkOut time.Time, bookings []model.Booking, excludeID string) (model.Booking, bool) {
	for _, b := range bookings {
		if b.RoomID != roomID || !b.Active() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if interval.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			return b, true
		}
	}
	return model.Booking{}, false
}

// ExcludeOutOfService drops rooms under maintenance or out of order. It is
// layered on top of FindAvailableRooms by walk-in pickers.
func ExcludeOutOfService(rooms []model.Room) []model.Room {
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Status.OutOfService() {
			continue
		}
		out = append(out, r)
	}
	return out
}

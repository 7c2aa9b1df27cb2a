package availability

import (
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

// NightOccupancy is the night-audit view of a single night.
type NightOccupancy struct {
	Date     time.Time
	Total    int
	Occupied int
	Free     int
	// OutOfService counts rooms flagged maintenance or out-of-order, whether or not they are booked.
	OutOfService int
	Rate         float64
}

// Occupancy computes occupancy for the night starting at date. A room counts as
// occupied when an active booking covers [date, date+1).
func Occupancy(rooms []model.Room, bookings []model.Booking, date time.Time) NightOccupancy {
	night := interval.Date(date)
	next := night.AddDate(0, 0, 1)

	stats := NightOccupancy{Date: night, Total: len(rooms)}
	free, _ := FindAvailableRooms(rooms, bookings, night, next, "")
	stats.Free = len(free)
	stats.Occupied = stats.Total - stats.Free
	for _, r := range rooms {
		if r.Status.OutOfService() {
			stats.OutOfService++
		}
	}
	if stats.Total > 0 {
		stats.Rate = float64(stats.Occupied) / float64(stats.Total)
	}
	return stats
}

// DailyOccupancy rolls Occupancy up for every night in [from, to).
func DailyOccupancy(rooms []model.Room, bookings []model.Booking, from, to time.Time) ([]NightOccupancy, error) {
	from, to = interval.Date(from), interval.Date(to)
	if err := interval.Validate(from, to); err != nil {
		return nil, err
	}

	relevant := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Active() && interval.Overlaps(b.CheckIn, b.CheckOut, from, to) {
			relevant = append(relevant, b)
		}
	}

	nights := make([]NightOccupancy, 0, interval.DurationDays(from, to))
	for night := from; night.Before(to); night = night.AddDate(0, 0, 1) {
		nights = append(nights, Occupancy(rooms, relevant, night))
	}
	return nights, nil
}

package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func booking(id, roomID, in, out string, status model.BookingStatus) model.Booking {
	return model.Booking{ID: id, RoomID: roomID, GuestID: "g-" + id, CheckIn: date(in), CheckOut: date(out), Status: status}
}

func TestIsRoomFree_Scenario(t *testing.T) {
	bookings := []model.Booking{booking("b1", "R1", "2024-01-20", "2024-01-25", model.BookingConfirmed)}

	free, err := IsRoomFree("R1", date("2024-01-22"), date("2024-01-23"), bookings)
	if err != nil {
		t.Fatalf("IsRoomFree: %v", err)
	}
	if free {
		t.Fatal("expected R1 to be busy on 2024-01-22")
	}

	free, err = IsRoomFree("R1", date("2024-01-25"), date("2024-01-27"), bookings)
	if err != nil {
		t.Fatalf("IsRoomFree: %v", err)
	}
	if !free {
		t.Fatal("back-to-back stay starting on check-out day should be free")
	}
}

func TestIsRoomFree_IgnoresInactiveAndOtherRooms(t *testing.T) {
	bookings := []model.Booking{
		booking("b1", "R1", "2024-01-20", "2024-01-25", model.BookingCancelled),
		booking("b2", "R1", "2024-01-20", "2024-01-25", model.BookingNoShow),
		booking("b3", "R2", "2024-01-20", "2024-01-25", model.BookingCheckedIn),
	}
	free, err := IsRoomFree("R1", date("2024-01-21"), date("2024-01-22"), bookings)
	if err != nil {
		t.Fatalf("IsRoomFree: %v", err)
	}
	if !free {
		t.Fatal("cancelled/no-show bookings and other rooms must not block R1")
	}
}

func TestIsRoomFree_NoBookings(t *testing.T) {
	start := date("2024-01-01")
	for i := 0; i < 30; i++ {
		for n := 1; n < 10; n++ {
			in := start.AddDate(0, 0, i)
			free, err := IsRoomFree("R9", in, in.AddDate(0, 0, n), nil)
			if err != nil || !free {
				t.Fatalf("room without bookings must be free (free=%v err=%v)", free, err)
			}
		}
	}
}

func TestIsRoomFree_RejectsInvalidRange(t *testing.T) {
	_, err := IsRoomFree("R1", date("2024-01-22"), date("2024-01-22"), nil)
	if !errors.Is(err, interval.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestFindAvailableRooms(t *testing.T) {
	rooms := []model.Room{
		{ID: "R1", Number: "101", Type: "double", Status: model.RoomAvailable},
		{ID: "R2", Number: "102", Type: "double", Status: model.RoomMaintenance},
		{ID: "R3", Number: "201", Type: "suite", Status: model.RoomAvailable},
	}
	bookings := []model.Booking{booking("b1", "R1", "2024-01-20", "2024-01-25", model.BookingConfirmed)}
	snapshot := append([]model.Booking(nil), bookings...)

	got, err := FindAvailableRooms(rooms[:2], bookings, date("2024-01-22"), date("2024-01-23"), "")
	if err != nil {
		t.Fatalf("FindAvailableRooms: %v", err)
	}
	if len(got) != 1 || got[0].ID != "R2" {
		t.Fatalf("expected [R2], got %+v", got)
	}

	got, err = FindAvailableRooms(rooms, bookings, date("2024-01-22"), date("2024-01-23"), "suite")
	if err != nil {
		t.Fatalf("FindAvailableRooms: %v", err)
	}
	if len(got) != 1 || got[0].ID != "R3" {
		t.Fatalf("expected [R3] for suite filter, got %+v", got)
	}

	again, _ := FindAvailableRooms(rooms, bookings, date("2024-01-22"), date("2024-01-23"), "suite")
	if !reflect.DeepEqual(got, again) {
		t.Fatal("repeated calls must return the same result")
	}
	if !reflect.DeepEqual(bookings, snapshot) {
		t.Fatal("bookings were mutated")
	}
}

func TestFindAvailableRooms_KeepsInputOrder(t *testing.T) {
	rooms := []model.Room{{ID: "C"}, {ID: "A"}, {ID: "B"}}
	got, err := FindAvailableRooms(rooms, nil, date("2024-05-01"), date("2024-05-02"), "")
	if err != nil {
		t.Fatalf("FindAvailableRooms: %v", err)
	}
	if len(got) != 3 || got[0].ID != "C" || got[1].ID != "A" || got[2].ID != "B" {
		t.Fatalf("order changed: %+v", got)
	}
}

func TestExcludeOutOfService(t *testing.T) {
	rooms := []model.Room{
		{ID: "R1", Status: model.RoomAvailable},
		{ID: "R2", Status: model.RoomMaintenance},
		{ID: "R3", Status: model.RoomOutOfOrder},
		{ID: "R4", Status: model.RoomCleaning},
	}
	got := ExcludeOutOfService(rooms)
	if len(got) != 2 || got[0].ID != "R1" || got[1].ID != "R4" {
		t.Fatalf("unexpected rooms: %+v", got)
	}
}

func TestDailyOccupancy(t *testing.T) {
	rooms := []model.Room{{ID: "R1"}, {ID: "R2", Status: model.RoomOutOfOrder}}
	bookings := []model.Booking{
		booking("b1", "R1", "2024-01-01", "2024-01-03", model.BookingCheckedIn),
		booking("b2", "R2", "2024-01-02", "2024-01-03", model.BookingCancelled),
	}

	nights, err := DailyOccupancy(rooms, bookings, date("2024-01-01"), date("2024-01-04"))
	if err != nil {
		t.Fatalf("DailyOccupancy: %v", err)
	}
	if len(nights) != 3 {
		t.Fatalf("expected 3 nights, got %d", len(nights))
	}
	wantOccupied := []int{1, 1, 0}
	for i, n := range nights {
		if n.Occupied != wantOccupied[i] {
			t.Fatalf("night %d: occupied=%d, want %d", i, n.Occupied, wantOccupied[i])
		}
		if n.Total != 2 || n.Free != 2-wantOccupied[i] || n.OutOfService != 1 {
			t.Fatalf("night %d: unexpected stats %+v", i, n)
		}
	}
	if nights[0].Rate != 0.5 {
		t.Fatalf("expected rate 0.5, got %v", nights[0].Rate)
	}

	if _, err := DailyOccupancy(rooms, bookings, date("2024-01-04"), date("2024-01-04")); !errors.Is(err, interval.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

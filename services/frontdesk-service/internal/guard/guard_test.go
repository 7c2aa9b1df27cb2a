package guard

import (
	"errors"
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

func testSnapshot() Snapshot {
	return Snapshot{
		Rooms: []model.Room{{ID: "R1", Number: "101"}, {ID: "R2", Number: "102"}},
		Bookings: []model.Booking{
			{ID: "b1", RoomID: "R1", CheckIn: date("2024-01-20"), CheckOut: date("2024-01-25"), Status: model.BookingConfirmed},
			{ID: "b2", RoomID: "R1", CheckIn: date("2024-01-26"), CheckOut: date("2024-01-28"), Status: model.BookingCancelled},
		},
	}
}

func TestCanAssign_ExcludesSelf(t *testing.T) {
	snap := testSnapshot()
	a := Assignment{RoomID: "R1", CheckIn: date("2024-01-20"), CheckOut: date("2024-01-25")}

	ok, err := CanAssign(snap, a)
	if err != nil {
		t.Fatalf("CanAssign: %v", err)
	}
	if ok {
		t.Fatal("re-saving b1 without exclusion must collide with itself")
	}

	a.ExcludingBookingID = "b1"
	ok, err = CanAssign(snap, a)
	if err != nil {
		t.Fatalf("CanAssign: %v", err)
	}
	if !ok {
		t.Fatal("re-saving b1 with exclusion must be allowed")
	}

	// b2 is cancelled.
	a.CheckOut = date("2024-01-27")
	if ok, _ := CanAssign(snap, a); !ok {
		t.Fatal("extending b1 over a cancelled booking should be allowed")
	}
}

func TestAssertNoConflict_ReportsBlockingBooking(t *testing.T) {
	snap := testSnapshot()
	err := AssertNoConflict(snap, Assignment{RoomID: "R1", CheckIn: date("2024-01-24"), CheckOut: date("2024-01-26")})
	if !errors.Is(err, ErrRoomConflict) {
		t.Fatalf("expected ErrRoomConflict, got %v", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if ce.BookingID != "b1" || ce.RoomID != "R1" || !ce.CheckIn.Equal(date("2024-01-24")) || !ce.CheckOut.Equal(date("2024-01-26")) {
		t.Fatalf("unexpected conflict details: %+v", ce)
	}
}

func TestAssertNoConflict_BackToBackAndOtherRoom(t *testing.T) {
	snap := testSnapshot()
	if err := AssertNoConflict(snap, Assignment{RoomID: "R1", CheckIn: date("2024-01-25"), CheckOut: date("2024-01-26")}); err != nil {
		t.Fatalf("same-day turnover must not conflict: %v", err)
	}
	if err := AssertNoConflict(snap, Assignment{RoomID: "R2", CheckIn: date("2024-01-20"), CheckOut: date("2024-01-25")}); err != nil {
		t.Fatalf("other room must not conflict: %v", err)
	}
}

func TestAssertNoConflict_Errors(t *testing.T) {
	snap := testSnapshot()

	err := AssertNoConflict(snap, Assignment{RoomID: "R1", CheckIn: date("2024-02-02"), CheckOut: date("2024-02-01")})
	if !errors.Is(err, interval.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	err = AssertNoConflict(snap, Assignment{RoomID: "R404", CheckIn: date("2024-02-01"), CheckOut: date("2024-02-02")})
	if !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected ErrUnknownRoom, got %v", err)
	}

	err = AssertNoConflict(snap, Assignment{RoomID: "R1", CheckIn: date("2024-02-01"), CheckOut: date("2024-02-02"), ExcludingBookingID: "nope"})
	if !errors.Is(err, ErrUnknownBooking) {
		t.Fatalf("expected ErrUnknownBooking, got %v", err)
	}
}

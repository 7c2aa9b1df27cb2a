package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/availability"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/guard"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/outbox"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/timeline"
)

var (
	ErrMissingGuest    = errors.New("guest_id is required")
	ErrNoStays         = errors.New("at least one stay is required")
	ErrBookingInactive = errors.New("cancelled or no-show bookings cannot be changed")
)

// OverlappingStaysError reports two stays of one request that claim the same
// room on the same night. Indexes refer to NewReservation.Stays.
type OverlappingStaysError struct {
	RoomID       string
	Stay         int
	OverlapsStay int
}

func (e *OverlappingStaysError) Error() string {
	return fmt.Sprintf("stay %d overlaps stay %d in room %s", e.Stay, e.OverlapsStay, e.RoomID)
}

func (e *OverlappingStaysError) Is(target error) bool {
	return target == guard.ErrRoomConflict
}

type Service struct {
	store  Store
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("frontdesk/reservations"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Stay is one room for one date range. Dates are reduced to calendar dates.
type Stay struct {
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
}

func (s Stay) normalized() Stay {
	return Stay{
		RoomID:   strings.TrimSpace(s.RoomID),
		CheckIn:  interval.Date(s.CheckIn),
		CheckOut: interval.Date(s.CheckOut),
	}
}

type NewReservation struct {
	GuestID string
	Stays   []Stay
}

type AvailabilityQuery struct {
	CheckIn             time.Time
	CheckOut            time.Time
	RoomType            string
	ExcludeOutOfService bool
}

// RoomCheck is the answer to "is this room free for these dates".
type RoomCheck struct {
	Free                 bool
	ConflictingBookingID string
}

type TimelineQuery struct {
	Window   timeline.Window
	RoomType string
}

type Row struct {
	Room   model.Room
	Blocks []timeline.Block
}

// Board is a projected timeline with one row per room, in room order.
type Board struct {
	Window timeline.Window
	Rows   []Row
}

func (s *Service) AvailableRooms(ctx context.Context, q AvailabilityQuery) ([]model.Room, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.AvailableRooms")
	defer span.End()

	checkIn, checkOut := interval.Date(q.CheckIn), interval.Date(q.CheckOut)
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("frontdesk.check_in", checkIn.Format(time.DateOnly)),
		attribute.String("frontdesk.check_out", checkOut.Format(time.DateOnly)),
		attribute.String("frontdesk.room_type", q.RoomType),
	)

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, recordErr(span, err)
	}
	bookings, err := s.store.ListBookings(ctx, checkIn, checkOut)
	if err != nil {
		return nil, recordErr(span, err)
	}

	free, err := availability.FindAvailableRooms(rooms, bookings, checkIn, checkOut, q.RoomType)
	if err != nil {
		return nil, err
	}
	if q.ExcludeOutOfService {
		free = availability.ExcludeOutOfService(free)
	}
	span.SetAttributes(attribute.Int("frontdesk.available_rooms", len(free)))
	return free, nil
}

// CheckRoom answers whether roomID can take the stay. excludingBookingID is the
// booking being edited, if any.
func (s *Service) CheckRoom(ctx context.Context, stay Stay, excludingBookingID string) (RoomCheck, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.CheckRoom")
	defer span.End()

	stay = stay.normalized()
	if err := interval.Validate(stay.CheckIn, stay.CheckOut); err != nil {
		return RoomCheck{}, err
	}
	span.SetAttributes(attribute.String("frontdesk.room_id", stay.RoomID))

	var result RoomCheck
	err := s.store.InTx(ctx, func(tx Tx) error {
		snap, err := s.roomSnapshot(ctx, tx, stay.RoomID, excludingBookingID)
		if err != nil {
			return err
		}
		err = guard.AssertNoConflict(snap, assignment(stay, excludingBookingID))
		var conflict *guard.ConflictError
		switch {
		case err == nil:
			result.Free = true
		case errors.As(err, &conflict):
			result.ConflictingBookingID = conflict.BookingID
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return RoomCheck{}, recordErr(span, err)
	}
	return result, nil
}

// Reserve books every stay for the guest, or none of them. Each room is checked
// by the guard on its own; stays earlier in the request are visible to later
// checks, so one request cannot double-book a room against itself.
func (s *Service) Reserve(ctx context.Context, r NewReservation) ([]model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.Reserve")
	defer span.End()

	guestID := strings.TrimSpace(r.GuestID)
	if guestID == "" {
		return nil, ErrMissingGuest
	}
	if len(r.Stays) == 0 {
		return nil, ErrNoStays
	}
	stays := make([]Stay, 0, len(r.Stays))
	for _, st := range r.Stays {
		st = st.normalized()
		if err := interval.Validate(st.CheckIn, st.CheckOut); err != nil {
			return nil, err
		}
		stays = append(stays, st)
	}
	roomIDs := distinctRoomIDs(stays)
	span.SetAttributes(attribute.StringSlice("frontdesk.room_ids", roomIDs))

	var created []model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		created = created[:0]
		if err := tx.LockRooms(ctx, roomIDs); err != nil {
			return err
		}
		rooms, err := tx.Rooms(ctx, roomIDs)
		if err != nil {
			return err
		}
		existing, err := tx.RoomBookings(ctx, roomIDs)
		if err != nil {
			return err
		}
		snap := guard.Snapshot{Rooms: rooms, Bookings: existing}

		now := s.now().UTC()
		pending := make(map[string]int, len(stays))
		for i, st := range stays {
			if err := guard.AssertNoConflict(snap, assignment(st, "")); err != nil {
				var conflict *guard.ConflictError
				if errors.As(err, &conflict) {
					if j, ok := pending[conflict.BookingID]; ok {
						return &OverlappingStaysError{RoomID: st.RoomID, Stay: i, OverlapsStay: j}
					}
				}
				return err
			}
			b := model.Booking{
				ID:        s.newID(),
				RoomID:    st.RoomID,
				GuestID:   guestID,
				CheckIn:   st.CheckIn,
				CheckOut:  st.CheckOut,
				Status:    model.BookingConfirmed,
				CreatedAt: now,
			}
			pending[b.ID] = i
			snap.Bookings = append(snap.Bookings, b)
			created = append(created, b)
		}

		for _, b := range created {
			if err := tx.InsertBooking(ctx, b); err != nil {
				return err
			}
			evt, err := outbox.BookingEvent(outbox.EventBookingCreated, b, nil)
			if err != nil {
				return err
			}
			if err := tx.InsertEvent(ctx, evt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, recordErr(span, err)
	}

	s.logger.Info("reservation created", "guest_id", guestID, "bookings", len(created))
	return created, nil
}

// ChangeStay moves an active booking to another room and/or dates.
func (s *Service) ChangeStay(ctx context.Context, bookingID string, stay Stay) (model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.ChangeStay")
	defer span.End()

	bookingID = strings.TrimSpace(bookingID)
	stay = stay.normalized()
	if err := interval.Validate(stay.CheckIn, stay.CheckOut); err != nil {
		return model.Booking{}, err
	}
	span.SetAttributes(
		attribute.String("frontdesk.booking_id", bookingID),
		attribute.String("frontdesk.room_id", stay.RoomID),
	)

	var updated model.Booking
	err := s.store.InTx(ctx, func(tx Tx) error {
		current, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !current.Active() {
			return ErrBookingInactive
		}
		if err := tx.LockRooms(ctx, distinctRoomIDs([]Stay{{RoomID: current.RoomID}, stay})); err != nil {
			return err
		}
		snap, err := s.roomSnapshot(ctx, tx, stay.RoomID, bookingID)
		if err != nil {
			return err
		}
		if err := guard.AssertNoConflict(snap, assignment(stay, bookingID)); err != nil {
			return err
		}

		updated = current
		updated.RoomID = stay.RoomID
		updated.CheckIn = stay.CheckIn
		updated.CheckOut = stay.CheckOut
		if err := tx.UpdateBookingStay(ctx, updated); err != nil {
			return err
		}
		evt, err := outbox.BookingEvent(outbox.EventBookingChanged, updated, &current)
		if err != nil {
			return err
		}
		return tx.InsertEvent(ctx, evt)
	})
	if err != nil {
		return model.Booking{}, recordErr(span, err)
	}

	s.logger.Info("booking stay changed", "booking_id", bookingID, "room_id", updated.RoomID)
	return updated, nil
}

func (s *Service) Timeline(ctx context.Context, q TimelineQuery) (Board, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.Timeline")
	defer span.End()

	w := q.Window
	if w.Span < 1 {
		return Board{}, interval.ErrInvalidRange
	}
	span.SetAttributes(
		attribute.String("frontdesk.window_start", w.Start.Format(time.DateOnly)),
		attribute.Int("frontdesk.window_span", w.Span),
	)

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return Board{}, recordErr(span, err)
	}
	if q.RoomType != "" {
		rooms = slices.DeleteFunc(rooms, func(r model.Room) bool { return r.Type != q.RoomType })
	}
	bookings, err := s.store.ListBookings(ctx, w.Start, w.End())
	if err != nil {
		return Board{}, recordErr(span, err)
	}

	blocks := timeline.Project(rooms, bookings, w)
	board := Board{Window: w, Rows: make([]Row, 0, len(rooms))}
	for _, r := range rooms {
		board.Rows = append(board.Rows, Row{Room: r, Blocks: blocks[r.ID]})
	}
	return board, nil
}

// Occupancy is the night-audit rollup for every night in [from, to).
func (s *Service) Occupancy(ctx context.Context, from, to time.Time) ([]availability.NightOccupancy, error) {
	ctx, span := s.tracer.Start(ctx, "reservations.Occupancy")
	defer span.End()

	from, to = interval.Date(from), interval.Date(to)
	if err := interval.Validate(from, to); err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, recordErr(span, err)
	}
	bookings, err := s.store.ListBookings(ctx, from, to)
	if err != nil {
		return nil, recordErr(span, err)
	}
	return availability.DailyOccupancy(rooms, bookings, from, to)
}

// roomSnapshot loads what the guard needs to judge an assignment to roomID. The
// edited booking is added when it currently lives in another room, so the guard
// can tell it exists.
func (s *Service) roomSnapshot(ctx context.Context, tx Tx, roomID, editedID string) (guard.Snapshot, error) {
	rooms, err := tx.Rooms(ctx, []string{roomID})
	if err != nil {
		return guard.Snapshot{}, err
	}
	bookings, err := tx.RoomBookings(ctx, []string{roomID})
	if err != nil {
		return guard.Snapshot{}, err
	}
	if editedID != "" && !slices.ContainsFunc(bookings, func(b model.Booking) bool { return b.ID == editedID }) {
		edited, err := tx.GetBooking(ctx, editedID)
		if err != nil {
			return guard.Snapshot{}, err
		}
		bookings = append(bookings, edited)
	}
	return guard.Snapshot{Rooms: rooms, Bookings: bookings}, nil
}

func assignment(st Stay, excludingBookingID string) guard.Assignment {
	return guard.Assignment{
		RoomID:             st.RoomID,
		CheckIn:            st.CheckIn,
		CheckOut:           st.CheckOut,
		ExcludingBookingID: excludingBookingID,
	}
}

// distinctRoomIDs returns sorted ids so concurrent writers always lock rooms in the same order.
func distinctRoomIDs(stays []Stay) []string {
	ids := make([]string, 0, len(stays))
	for _, st := range stays {
		if st.RoomID != "" {
			ids = append(ids, st.RoomID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

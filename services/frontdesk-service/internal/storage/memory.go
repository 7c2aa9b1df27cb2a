package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/guard"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/interval"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/outbox"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/reservations"
)

// maxMemoryEvents bounds the events kept by Memory. Nothing publishes them in
// memory mode, so only the most recent ones are retained.
const maxMemoryEvents = 1000

// Memory keeps rooms and bookings in process. Transactions are serialized by a
// single mutex, which makes every InTx a single-writer section.
type Memory struct {
	mu       sync.Mutex
	rooms    []model.Room
	bookings []model.Booking
	events   []outbox.Event
}

var _ reservations.Store = (*Memory)(nil)

func NewMemory(rooms []model.Room, bookings []model.Booking) *Memory {
	return &Memory{
		rooms:    slices.Clone(rooms),
		bookings: slices.Clone(bookings),
	}
}

func (m *Memory) ListRooms(_ context.Context) ([]model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rooms), nil
}

func (m *Memory) ListBookings(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Booking
	for _, b := range m.bookings {
		if interval.Overlaps(b.CheckIn, b.CheckOut, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Events returns the most recent committed booking events, oldest first.
func (m *Memory) Events() []outbox.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

func (m *Memory) InTx(ctx context.Context, fn func(reservations.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{rooms: m.rooms, bookings: slices.Clone(m.bookings)}
	if err := fn(tx); err != nil {
		return err
	}
	m.bookings = tx.bookings
	m.events = append(m.events, tx.events...)
	if n := len(m.events) - maxMemoryEvents; n > 0 {
		m.events = slices.Delete(m.events, 0, n)
	}
	return nil
}

type memoryTx struct {
	rooms    []model.Room
	bookings []model.Booking
	events   []outbox.Event
}

// LockRooms is a no-op: the store mutex is held for the whole transaction.
func (t *memoryTx) LockRooms(_ context.Context, _ []string) error { return nil }

func (t *memoryTx) Rooms(_ context.Context, roomIDs []string) ([]model.Room, error) {
	var out []model.Room
	for _, r := range t.rooms {
		if slices.Contains(roomIDs, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memoryTx) RoomBookings(_ context.Context, roomIDs []string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.bookings {
		if b.Active() && slices.Contains(roomIDs, b.RoomID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memoryTx) GetBooking(_ context.Context, id string) (model.Booking, error) {
	i := t.indexOf(id)
	if i < 0 {
		return model.Booking{}, fmt.Errorf("%w: %s", guard.ErrUnknownBooking, id)
	}
	return t.bookings[i], nil
}

func (t *memoryTx) InsertBooking(_ context.Context, b model.Booking) error {
	if t.indexOf(b.ID) >= 0 {
		return fmt.Errorf("booking %s already exists", b.ID)
	}
	t.bookings = append(t.bookings, b)
	return nil
}

func (t *memoryTx) UpdateBookingStay(_ context.Context, b model.Booking) error {
	i := t.indexOf(b.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", guard.ErrUnknownBooking, b.ID)
	}
	t.bookings[i].RoomID = b.RoomID
	t.bookings[i].CheckIn = b.CheckIn
	t.bookings[i].CheckOut = b.CheckOut
	return nil
}

func (t *memoryTx) InsertEvent(_ context.Context, evt outbox.Event) error {
	t.events = append(t.events, evt)
	return nil
}

func (t *memoryTx) indexOf(id string) int {
	return slices.IndexFunc(t.bookings, func(b model.Booking) bool { return b.ID == id })
}

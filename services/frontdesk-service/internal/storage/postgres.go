package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/frontdesk/libs/db"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/guard"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/outbox"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/reservations"
)

// roomLockNamespace is the first key of the two-key advisory lock taken per room.
const roomLockNamespace = 4711

const bookingColumns = `id, room_id, guest_id, check_in, check_out, status, created_at`

type Postgres struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

var _ reservations.Store = (*Postgres)(nil)

func NewPostgres(pool *db.Pool, outboxRepo *outbox.Repository) *Postgres {
	return &Postgres{pool: pool, outbox: outboxRepo}
}

func (p *Postgres) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, number, room_type, floor, capacity, status, housekeeping_status
		FROM rooms
		WHERE retired_at IS NULL
		ORDER BY floor, number
	`)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

func (p *Postgres) ListBookings(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE check_in < $2 AND check_out > $1
		ORDER BY check_in, id
	`, from, to)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (p *Postgres) InTx(ctx context.Context, fn func(reservations.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx, outbox: p.outbox}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx     pgx.Tx
	outbox *outbox.Repository
}

// LockRooms takes transaction-scoped advisory locks. Callers pass ids sorted.
func (t *pgTx) LockRooms(ctx context.Context, roomIDs []string) error {
	for _, id := range roomIDs {
		if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, roomLockNamespace, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) Rooms(ctx context.Context, roomIDs []string) ([]model.Room, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, number, room_type, floor, capacity, status, housekeeping_status
		FROM rooms
		WHERE id = ANY($1) AND retired_at IS NULL
	`, roomIDs)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

func (t *pgTx) RoomBookings(ctx context.Context, roomIDs []string) ([]model.Booking, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE room_id = ANY($1)
			AND status NOT IN ('cancelled', 'no-show')
		ORDER BY check_in, id
	`, roomIDs)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (t *pgTx) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, id)
	if err != nil {
		return model.Booking{}, err
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return model.Booking{}, err
	}
	if len(bookings) == 0 {
		return model.Booking{}, fmt.Errorf("%w: %s", guard.ErrUnknownBooking, id)
	}
	return bookings[0], nil
}

func (t *pgTx) InsertBooking(ctx context.Context, b model.Booking) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO bookings (id, room_id, guest_id, check_in, check_out, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.ID, b.RoomID, b.GuestID, b.CheckIn, b.CheckOut, string(b.Status), b.CreatedAt)
	return mapWriteErr(err, b)
}

func (t *pgTx) UpdateBookingStay(ctx context.Context, b model.Booking) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE bookings
		SET room_id = $2,
			check_in = $3,
			check_out = $4,
			updated_at = now()
		WHERE id = $1
	`, b.ID, b.RoomID, b.CheckIn, b.CheckOut)
	if err != nil {
		return mapWriteErr(err, b)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", guard.ErrUnknownBooking, b.ID)
	}
	return nil
}

func (t *pgTx) InsertEvent(ctx context.Context, evt outbox.Event) error {
	return t.outbox.Insert(ctx, t.tx, evt)
}

// IsConflict reports an exclusion-constraint violation on bookings, the
// database-level backstop against overlapping active stays.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func mapWriteErr(err error, b model.Booking) error {
	switch {
	case err == nil:
		return nil
	case IsConflict(err):
		return &guard.ConflictError{RoomID: b.RoomID, CheckIn: b.CheckIn, CheckOut: b.CheckOut}
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", guard.ErrUnknownRoom, b.RoomID)
	}
	return err
}

func scanRooms(rows pgx.Rows) ([]model.Room, error) {
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		var status, housekeeping string
		if err := rows.Scan(&r.ID, &r.Number, &r.Type, &r.Floor, &r.Capacity, &status, &housekeeping); err != nil {
			return nil, err
		}
		r.Status = model.RoomStatus(status)
		r.Housekeeping = model.HousekeepingStatus(housekeeping)
		rooms = append(rooms, r)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rooms, nil
}

func scanBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.RoomID, &b.GuestID, &b.CheckIn, &b.CheckOut, &status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/xaibot/event-ticketing/internal/model"
)

// BookingRepo provides data access to the bookings table.  Creating a
// booking and bumping the event's booked ticket counter is a single
// transaction here; callers are expected to have performed the capacity
// check under the event's advisory lock before calling Create.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, event_id, user_id, booked_tickets, created_at, updated_at`

// Create inserts a booking and increments its event's booked_tickets by
// the booking's ticket count.  Both writes commit together or not at
// all, which keeps sum(bookings.booked_tickets) equal to the event
// counter.  The generated ID and timestamps are populated on the
// provided record.  ErrEventNotFound is returned when the event row is
// missing.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE events SET booked_tickets = booked_tickets + ?, updated_at = UTC_TIMESTAMP(6) WHERE id = ?`
	res, err := tx.ExecContext(ctx, upd, b.BookedTickets, b.EventID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventNotFound
	}

	const ins = `INSERT INTO bookings (event_id, user_id, booked_tickets) VALUES (?, ?, ?)`
	res, err = tx.ExecContext(ctx, ins, b.EventID, b.UserID, b.BookedTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps.
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(
		&b.ID, &b.EventID, &b.UserID, &b.BookedTickets, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns a page of the user's bookings ordered by ascending
// ID.
func (r *BookingRepo) ListByUser(ctx context.Context, userID, limit, offset uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.BookedTickets, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// VersionByUser fingerprints the page ListByUser would return.  Bookings
// are immutable, so in practice only inserts move this fingerprint, but
// the updated_at marker is included for symmetry with events.
func (r *BookingRepo) VersionByUser(ctx context.Context, userID, limit, offset uint64) (string, error) {
	const q = `SELECT COUNT(*), MAX(updated_at)
	           FROM (SELECT updated_at FROM bookings WHERE user_id = ? ORDER BY id ASC LIMIT ? OFFSET ?) page`
	var n uint64
	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, userID, limit, offset).Scan(&n, &latest); err != nil {
		return "", err
	}
	return collectionVersion(n, latest), nil
}

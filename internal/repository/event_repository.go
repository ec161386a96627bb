package repository

import (
	"context"
	"database/sql"

	"github.com/xaibot/event-ticketing/internal/model"
)

// EventRepo provides data access to the events table.  All timestamps
// are stored in UTC.  The booked_tickets column is never written here:
// its only writer is BookingRepo.Create, which updates it together with
// the booking insert inside one transaction.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, user_id, name, description, address, starts_at, max_tickets, booked_tickets, created_at, updated_at`

// Create inserts a new event and populates the generated ID and
// timestamps on the provided record.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (user_id, name, description, address, starts_at, max_tickets) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.UserID, e.Name, e.Description, e.Address, e.StartsAt.UTC(), e.MaxTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(
		&e.ID, &e.UserID, &e.Name, &e.Description, &e.Address, &e.StartsAt,
		&e.MaxTickets, &e.BookedTickets, &e.CreatedAt, &e.UpdatedAt,
	)
}

// GetByID loads a single event.  It returns ErrEventNotFound when no row
// with the given ID exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.UserID, &e.Name, &e.Description, &e.Address, &e.StartsAt,
		&e.MaxTickets, &e.BookedTickets, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns a page of events ordered by ascending ID.  The stable
// order keeps repeated calls with the same limit/offset deterministic.
func (r *EventRepo) List(ctx context.Context, limit, offset uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY id ASC LIMIT ? OFFSET ?`
	return r.scanEvents(r.db.QueryContext(ctx, q, limit, offset))
}

// ListByOwner returns a page of events created by the given user,
// ordered by ascending ID.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID, limit, offset uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE user_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`
	return r.scanEvents(r.db.QueryContext(ctx, q, ownerID, limit, offset))
}

// Version fingerprints the page List would return: row count plus the
// most recent updated_at inside the page.  Any change to a row in the
// page moves the fingerprint and defeats cached copies of it.
func (r *EventRepo) Version(ctx context.Context, limit, offset uint64) (string, error) {
	const q = `SELECT COUNT(*), MAX(updated_at)
	           FROM (SELECT updated_at FROM events ORDER BY id ASC LIMIT ? OFFSET ?) page`
	var n uint64
	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, limit, offset).Scan(&n, &latest); err != nil {
		return "", err
	}
	return collectionVersion(n, latest), nil
}

// VersionByOwner is Version for the owner-filtered listing.
func (r *EventRepo) VersionByOwner(ctx context.Context, ownerID, limit, offset uint64) (string, error) {
	const q = `SELECT COUNT(*), MAX(updated_at)
	           FROM (SELECT updated_at FROM events WHERE user_id = ? ORDER BY id ASC LIMIT ? OFFSET ?) page`
	var n uint64
	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, ownerID, limit, offset).Scan(&n, &latest); err != nil {
		return "", err
	}
	return collectionVersion(n, latest), nil
}

func (r *EventRepo) scanEvents(rows *sql.Rows, err error) ([]model.Event, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Name, &e.Description, &e.Address, &e.StartsAt,
			&e.MaxTickets, &e.BookedTickets, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

package service

import (
	"context"
	"time"

	"github.com/xaibot/event-ticketing/internal/lock"
	"github.com/xaibot/event-ticketing/internal/model"
)

// The services depend on these small interfaces rather than on the
// repository structs directly so tests can substitute in-memory
// implementations.  The repository package satisfies all of them.

// EventStore is the persistence surface for events.  Version and
// VersionByOwner return the collection fingerprint for the page the
// matching List call would produce; the fingerprint changes whenever a
// row in that page is created, updated or removed.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	List(ctx context.Context, limit, offset uint64) ([]model.Event, error)
	ListByOwner(ctx context.Context, ownerID, limit, offset uint64) ([]model.Event, error)
	Version(ctx context.Context, limit, offset uint64) (string, error)
	VersionByOwner(ctx context.Context, ownerID, limit, offset uint64) (string, error)
}

// BookingStore is the persistence surface for bookings.  Create must
// atomically insert the booking and add its ticket count to the event's
// booked_tickets counter.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID, limit, offset uint64) ([]model.Booking, error)
	VersionByUser(ctx context.Context, userID, limit, offset uint64) (string, error)
}

// Locker acquires the named distributed mutex that serializes booking
// admissions per event.
type Locker interface {
	Acquire(ctx context.Context, name string, timeout time.Duration) (lock.Handle, error)
}

// ListCache memoizes list query results under a (query, fingerprint)
// key.  cache.QueryCache is the production implementation.
type ListCache interface {
	Fetch(ctx context.Context, name, version string, out interface{}, load func(ctx context.Context) (interface{}, error)) error
}

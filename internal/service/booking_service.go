package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xaibot/event-ticketing/internal/lock"
	"github.com/xaibot/event-ticketing/internal/model"
	"github.com/xaibot/event-ticketing/internal/repository"
)

// BookingService owns booking admission: it is the only code path that
// mutates an event's booked ticket counter.  Admissions for one event
// are serialized by the per-event distributed lock, so no two
// concurrent requests can both observe the same free capacity.
type BookingService struct {
	events      EventStore
	bookings    BookingStore
	locks       Locker
	lists       ListCache
	lockTimeout time.Duration
}

// NewBookingService constructs a BookingService.  lockTimeout bounds how
// long a booking waits for its event's lock before giving up.
func NewBookingService(events EventStore, bookings BookingStore, locks Locker, lists ListCache, lockTimeout time.Duration) *BookingService {
	if events == nil || bookings == nil || locks == nil || lists == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		events:      events,
		bookings:    bookings,
		locks:       locks,
		lists:       lists,
		lockTimeout: lockTimeout,
	}
}

// CreateBookingParams carries the inputs for a booking admission.
// EventID and TicketsToBook bind from the request body; UserID is
// injected from the authenticated session by the handler.  Pointer
// fields distinguish "absent" from "zero" so missing parameters get
// their own error message.
type CreateBookingParams struct {
	EventID       *int64 `json:"event_id"`
	UserID        uint64 `json:"-"`
	TicketsToBook *int64 `json:"tickets_to_book"`
}

func (p CreateBookingParams) validate() error {
	if p.EventID == nil {
		return Required("Event")
	}
	if *p.EventID <= 0 {
		return mustBePositive("Event")
	}
	if p.UserID == 0 {
		return mustBePositive("User")
	}
	if p.TicketsToBook == nil {
		return Required("Tickets to book")
	}
	if *p.TicketsToBook <= 0 {
		return mustBePositive("Tickets to book")
	}
	return nil
}

// CreateBooking admits one booking against an event's capacity.
//
// The sequence is: validate inputs, acquire the event's lock, re-read
// the event, check capacity, then write the booking and the counter
// bump in one transaction.  Validation failures short-circuit before
// any lock attempt, and a timed-out acquisition leaves every row
// untouched.  There is exactly one attempt per call; the caller decides
// whether retrying makes sense.
func (s *BookingService) CreateBooking(ctx context.Context, p CreateBookingParams) (*model.Booking, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	eventID := uint64(*p.EventID)

	h, err := s.locks.Acquire(ctx, lock.NameForEvent(eventID), s.lockTimeout)
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			return nil, ErrCouldNotBook
		}
		return nil, err
	}
	defer func() { _ = h.Release(ctx) }()

	// The event must be loaded only after the lock is held.  A read
	// taken before acquisition could be stale by the time we own the
	// critical section, and two admissions could both see the last
	// remaining capacity.
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, &EventNotFoundError{ID: *p.EventID}
		}
		return nil, err
	}

	available := int64(ev.MaxTickets) - int64(ev.BookedTickets)
	if *p.TicketsToBook > available {
		return nil, ErrNotEnoughTickets
	}

	b := &model.Booking{
		EventID:       eventID,
		UserID:        p.UserID,
		BookedTickets: uint32(*p.TicketsToBook),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, &EventNotFoundError{ID: *p.EventID}
		}
		return nil, err
	}
	return b, nil
}

// ListBookingsParams carries the inputs for listing a user's own
// bookings.  UserID comes from the session.
type ListBookingsParams struct {
	UserID uint64
	Limit  *int64
	Offset *int64
}

// ListMine returns a page of the user's bookings ordered by ascending
// ID, served from the query cache when the page's fingerprint has not
// moved since it was last stored.
func (s *BookingService) ListMine(ctx context.Context, p ListBookingsParams) ([]model.Booking, error) {
	if err := validatePage(p.Limit, p.Offset); err != nil {
		return nil, err
	}
	if p.UserID == 0 {
		return nil, mustBePositive("User")
	}
	limit, offset := uint64(*p.Limit), uint64(*p.Offset)

	version, err := s.bookings.VersionByUser(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("bookings:user=%d:limit=%d:offset=%d", p.UserID, limit, offset)

	bookings := make([]model.Booking, 0)
	err = s.lists.Fetch(ctx, name, version, &bookings, func(ctx context.Context) (interface{}, error) {
		return s.bookings.ListByUser(ctx, p.UserID, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

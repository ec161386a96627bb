package service

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/xaibot/event-ticketing/internal/model"
)

// EventService handles event creation and the listing queries.  It
// never touches booked_tickets; capacity mutation is the booking
// service's job.
type EventService struct {
	events EventStore
	lists  ListCache
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, lists ListCache) *EventService {
	if events == nil || lists == nil {
		panic("nil dependency passed to NewEventService")
	}
	return &EventService{events: events, lists: lists}
}

// CreateEventParams carries the inputs for publishing an event.
// OwnerID is injected from the authenticated session; StartsAt is an
// ISO-8601 timestamp string as received on the wire.
type CreateEventParams struct {
	OwnerID     uint64  `json:"-"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	StartsAt    *string `json:"starts_at"`
	MaxTickets  *int64  `json:"max_tickets"`
}

func (p CreateEventParams) validate() (time.Time, error) {
	if p.OwnerID == 0 {
		return time.Time{}, mustBePositive("User")
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"Name", p.Name},
		{"Description", p.Description},
		{"Address", p.Address},
	} {
		if f.value == nil || *f.value == "" {
			return time.Time{}, Required(f.name)
		}
		if utf8.RuneCountInString(*f.value) > 256 {
			return time.Time{}, &ValidationError{
				Field:   f.name,
				Message: f.name + " is too long (maximum is 256 characters)",
			}
		}
	}
	if p.StartsAt == nil || *p.StartsAt == "" {
		return time.Time{}, Required("Starts at")
	}
	startsAt, err := time.Parse(time.RFC3339, *p.StartsAt)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   "Starts at",
			Message: "Starts at is not a valid ISO-8601 timestamp",
		}
	}
	if p.MaxTickets == nil {
		return time.Time{}, Required("Max tickets")
	}
	if *p.MaxTickets <= 0 {
		return time.Time{}, mustBePositive("Max tickets")
	}
	// The capacity column is 32-bit unsigned; anything larger would be
	// truncated on insert and the event would silently get the wrong
	// capacity.
	if *p.MaxTickets > math.MaxUint32 {
		return time.Time{}, &ValidationError{
			Field:   "Max tickets",
			Message: fmt.Sprintf("Max tickets must be less than or equal to %d", uint64(math.MaxUint32)),
		}
	}
	return startsAt.UTC(), nil
}

// CreateEvent validates the inputs and persists a new event with zero
// booked tickets.
func (s *EventService) CreateEvent(ctx context.Context, p CreateEventParams) (*model.Event, error) {
	startsAt, err := p.validate()
	if err != nil {
		return nil, err
	}
	e := &model.Event{
		UserID:      p.OwnerID,
		Name:        *p.Name,
		Description: *p.Description,
		Address:     *p.Address,
		StartsAt:    startsAt,
		MaxTickets:  uint32(*p.MaxTickets),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEventsParams carries pagination for the public event listing and,
// when OwnerID is non-zero, restricts the listing to that organizer's
// events.
type ListEventsParams struct {
	OwnerID uint64
	Limit   *int64
	Offset  *int64
}

// List returns a page of events ordered by ascending ID, served from
// the query cache when the page's fingerprint has not moved.
func (s *EventService) List(ctx context.Context, p ListEventsParams) ([]model.Event, error) {
	if err := validatePage(p.Limit, p.Offset); err != nil {
		return nil, err
	}
	limit, offset := uint64(*p.Limit), uint64(*p.Offset)

	var (
		name    string
		version string
		err     error
	)
	if p.OwnerID != 0 {
		version, err = s.events.VersionByOwner(ctx, p.OwnerID, limit, offset)
		name = fmt.Sprintf("events:owner=%d:limit=%d:offset=%d", p.OwnerID, limit, offset)
	} else {
		version, err = s.events.Version(ctx, limit, offset)
		name = fmt.Sprintf("events:limit=%d:offset=%d", limit, offset)
	}
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	err = s.lists.Fetch(ctx, name, version, &events, func(ctx context.Context) (interface{}, error) {
		if p.OwnerID != 0 {
			return s.events.ListByOwner(ctx, p.OwnerID, limit, offset)
		}
		return s.events.List(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

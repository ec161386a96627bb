package model

import "time"

// Event represents a published event with a fixed ticket capacity.
// An event belongs to the user who created it.  The booked ticket
// counter is only ever mutated by the booking admission path, which
// guarantees that it never exceeds MaxTickets.  This struct
// corresponds to a row in the `events` table.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user ID of the organizer who owns the event.
//  Name          – event name (1–256 characters).
//  Description   – free-form description (1–256 characters).
//  Address       – venue address (1–256 characters).
//  StartsAt      – when the event starts (UTC).
//  MaxTickets    – total ticket capacity, always positive.
//  BookedTickets – tickets booked so far, 0 <= BookedTickets <= MaxTickets.
//  CreatedAt     – timestamp when the event was created.
//  UpdatedAt     – timestamp of last update.
type Event struct {
	ID            uint64    // events.id
	UserID        uint64    // events.user_id
	Name          string    // events.name
	Description   string    // events.description
	Address       string    // events.address
	StartsAt      time.Time // events.starts_at
	MaxTickets    uint32    // events.max_tickets
	BookedTickets uint32    // events.booked_tickets
	CreatedAt     time.Time // events.created_at
	UpdatedAt     time.Time // events.updated_at
}

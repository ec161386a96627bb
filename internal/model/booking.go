package model

import "time"

// Booking records a user's successful ticket purchase for an event.
// A booking's BookedTickets contributes exactly once to its event's
// booked ticket counter: both are written in the same transaction.
// Bookings are immutable once created and are never deleted.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event the tickets were booked for.
//  UserID        – user who booked the tickets.
//  BookedTickets – number of tickets booked (>= 1).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64    // bookings.id
	EventID       uint64    // bookings.event_id
	UserID        uint64    // bookings.user_id
	BookedTickets uint32    // bookings.booked_tickets
	CreatedAt     time.Time // bookings.created_at
	UpdatedAt     time.Time // bookings.updated_at
}

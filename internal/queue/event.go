// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking is successfully
// admitted.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	EventID       uint64 `json:"event_id"`
	UserID        uint64 `json:"user_id"`
	BookedTickets uint32 `json:"booked_tickets"`
	CreatedAt     string `json:"created_at"`
}

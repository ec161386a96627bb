package service

import (
	"errors"
	"fmt"
)

// The error values in this file carry the exact messages shown to API
// clients.  Handlers render any of them as a 422 response with an
// {"error": message} body; anything else is treated as an internal
// error.

// ErrNotEnoughTickets is returned when the requested ticket count
// exceeds the event's remaining capacity.
var ErrNotEnoughTickets = errors.New("Not enough tickets available")

// ErrCouldNotBook is returned when the per-event lock could not be
// acquired within the configured timeout.  The caller may retry, but
// the service itself never does.
var ErrCouldNotBook = errors.New("Could not book the tickets")

// ValidationError reports a single invalid or missing input parameter.
// It is always produced before any lock attempt or database write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// EventNotFoundError reports a booking attempt against an event ID that
// does not exist.
type EventNotFoundError struct {
	ID int64
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("Could not find event with id %d", e.ID)
}

// IsClientError reports whether err should be surfaced to the caller
// verbatim with a 422 status, as opposed to an internal failure.
func IsClientError(err error) bool {
	var ve *ValidationError
	var nf *EventNotFoundError
	return errors.As(err, &ve) || errors.As(err, &nf) ||
		errors.Is(err, ErrNotEnoughTickets) || errors.Is(err, ErrCouldNotBook)
}

// Required builds the ValidationError for a missing parameter.  Field is
// the human-readable parameter name, e.g. "Tickets to book".
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " is required"}
}

// NotAnInteger builds the ValidationError for a parameter that could not
// be parsed as an integer.  Handlers use it when query parameters fail
// to parse, before the service layer is ever reached.
func NotAnInteger(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " must be an integer"}
}

func mustBePositive(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " must be greater than 0"}
}

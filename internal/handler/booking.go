package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xaibot/event-ticketing/internal/model"
	"github.com/xaibot/event-ticketing/internal/queue"
	"github.com/xaibot/event-ticketing/internal/service"
)

// BookingHandler exposes booking admission and the caller's booking
// list.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// bookingBodyFields names the integer body fields of a booking request
// for bind-error reporting.
var bookingBodyFields = map[string]string{
	"event_id":        "Event",
	"tickets_to_book": "Tickets to book",
}

type bookingResponse struct {
	ID            uint64 `json:"id"`
	EventID       uint64 `json:"event_id"`
	UserID        uint64 `json:"user_id"`
	BookedTickets uint32 `json:"booked_tickets"`
}

func newBookingResponse(b model.Booking) bookingResponse {
	return bookingResponse{ID: b.ID, EventID: b.EventID, UserID: b.UserID, BookedTickets: b.BookedTickets}
}

// Create handles POST /v1/bookings.  On success a booking.created
// message is published fire-and-forget; a broker outage never fails the
// booking that already committed.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var p service.CreateBookingParams
	if err := c.Bind(&p); err != nil {
		if ve := bindFieldError(err, bookingBodyFields); ve != nil {
			return renderError(c, ve)
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p.UserID = userID

	b, err := h.Bookings.CreateBooking(c.Request().Context(), p)
	if err != nil {
		return renderError(c, err)
	}

	go func(ev queue.BookingCreatedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishBookingCreated(ctx, ev)
	}(queue.BookingCreatedEvent{
		BookingID:     b.ID,
		EventID:       b.EventID,
		UserID:        b.UserID,
		BookedTickets: b.BookedTickets,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, newBookingResponse(*b))
}

// Index handles GET /v1/bookings/mine?limit&offset, listing the
// caller's own bookings.
func (h *BookingHandler) Index(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, err := queryInt(c, "limit", "Limit")
	if err != nil {
		return renderError(c, err)
	}
	offset, err := queryInt(c, "offset", "Offset")
	if err != nil {
		return renderError(c, err)
	}

	bookings, err := h.Bookings.ListMine(c.Request().Context(), service.ListBookingsParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return renderError(c, err)
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return c.JSON(http.StatusOK, out)
}

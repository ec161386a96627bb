package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xaibot/event-ticketing/internal/model"
	"github.com/xaibot/event-ticketing/internal/service"
)

// EventHandler exposes event creation and the event listings.  JWT
// authentication has already run by the time any of these methods is
// invoked.
type EventHandler struct {
	Events *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	if events == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

// eventBodyFields names the integer body fields of an event request for
// bind-error reporting.
var eventBodyFields = map[string]string{
	"max_tickets": "Max tickets",
}

// eventResponse is the wire shape of an event.  The key set is exactly
// the documented fields; internal timestamps and the booked counter are
// not exposed.
type eventResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	StartsAt    string `json:"starts_at"`
	MaxTickets  uint32 `json:"max_tickets"`
}

func newEventResponse(e model.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Address:     e.Address,
		StartsAt:    e.StartsAt.UTC().Format(time.RFC3339),
		MaxTickets:  e.MaxTickets,
	}
}

func newEventResponses(events []model.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var p service.CreateEventParams
	if err := c.Bind(&p); err != nil {
		if ve := bindFieldError(err, eventBodyFields); ve != nil {
			return renderError(c, ve)
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p.OwnerID = userID

	e, err := h.Events.CreateEvent(c.Request().Context(), p)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusCreated, newEventResponse(*e))
}

// Index handles GET /v1/events?limit&offset.
func (h *EventHandler) Index(c echo.Context) error {
	p, err := listParams(c, 0)
	if err != nil {
		return renderError(c, err)
	}
	events, err := h.Events.List(c.Request().Context(), p)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, newEventResponses(events))
}

// Authored handles GET /v1/events/authored?limit&offset, listing only
// the current user's events.
func (h *EventHandler) Authored(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := listParams(c, userID)
	if err != nil {
		return renderError(c, err)
	}
	events, err := h.Events.List(c.Request().Context(), p)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, newEventResponses(events))
}

func listParams(c echo.Context, ownerID uint64) (service.ListEventsParams, error) {
	limit, err := queryInt(c, "limit", "Limit")
	if err != nil {
		return service.ListEventsParams{}, err
	}
	offset, err := queryInt(c, "offset", "Offset")
	if err != nil {
		return service.ListEventsParams{}, err
	}
	return service.ListEventsParams{OwnerID: ownerID, Limit: limit, Offset: offset}, nil
}

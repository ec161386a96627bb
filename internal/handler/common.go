package handler // handler defines http handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xaibot/event-ticketing/internal/service"
)

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// queryInt parses an optional integer query parameter.  A missing
// parameter yields nil (the service reports it as required); a present
// but malformed one is a parameter error right here, before any service
// call.
func queryInt(c echo.Context, param, field string) (*int64, error) {
	raw := c.QueryParam(param)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, service.NotAnInteger(field)
	}
	return &n, nil
}

// bindFieldError inspects a failed Bind and, when the cause is a
// wrong-typed value for a known numeric body field, returns the
// parameter error for that field.  fields maps JSON keys to their
// human-readable names.  A nil return means the failure was not a
// field-level type error (e.g. malformed JSON) and the caller should
// fall back to a generic bad-request response.
func bindFieldError(err error, fields map[string]string) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Internal == nil {
		return nil
	}
	var ute *json.UnmarshalTypeError
	if !errors.As(he.Internal, &ute) {
		return nil
	}
	if name, ok := fields[ute.Field]; ok {
		return service.NotAnInteger(name)
	}
	return nil
}

// renderError maps service failures onto HTTP responses.  Client errors
// carry user-facing messages and are surfaced verbatim with a 422;
// everything else is an internal error whose details stay in the logs.
func renderError(c echo.Context, err error) error {
	if service.IsClientError(err) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

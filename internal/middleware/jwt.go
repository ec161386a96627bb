package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// signInRequired is the body returned for any request that reaches a
// protected route without a valid session.
const signInRequired = "You need to sign in or sign up before continuing."

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject (the user ID) into the request
// context under "user_id".  The provided secret must match the one used
// when issuing tokens.  Requests without a valid token receive a 401
// with a sign-in-required message.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": signInRequired})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Only HMAC-signed tokens are issued by this service.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": signInRequired})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": signInRequired})
			}
			uid, ok := subjectID(claims["sub"])
			if !ok || uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": signInRequired})
			}
			c.Set("user_id", uid)
			return next(c)
		}
	}
}

// subjectID normalizes the sub claim into a uint64 user ID.  JWT numeric
// claims decode as float64; string subjects are parsed for
// compatibility with tokens issued by other stacks.
func subjectID(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

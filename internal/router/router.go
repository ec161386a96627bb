package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/xaibot/event-ticketing/internal/config"
	"github.com/xaibot/event-ticketing/internal/handler"
	"github.com/xaibot/event-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; logout and the
// profile endpoint require a session and are registered on the
// protected group by RegisterAPI.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token on every use.
	g.POST("/refresh", a.Refresh)
}

// RegisterAPI registers the protected API surface under /v1.  Every
// route in this group runs JWT authentication first and then the rate
// limiter, so the limiter can key buckets by user rather than only by
// IP.
func RegisterAPI(e *echo.Echo, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client,
	a *handler.AuthHandler, ev *handler.EventHandler, bk *handler.BookingHandler) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.RateLimit(rlCfg, rdb))

	g.GET("/me", a.Me)
	g.POST("/auth/logout", a.Logout)

	g.POST("/events", ev.Create)
	g.GET("/events", ev.Index)
	g.GET("/events/authored", ev.Authored)

	g.POST("/bookings", bk.Create)
	g.GET("/bookings/mine", bk.Index)
}

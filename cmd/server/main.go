package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/xaibot/event-ticketing/internal/cache"
	"github.com/xaibot/event-ticketing/internal/config"
	"github.com/xaibot/event-ticketing/internal/database"
	"github.com/xaibot/event-ticketing/internal/handler"
	"github.com/xaibot/event-ticketing/internal/lock"
	"github.com/xaibot/event-ticketing/internal/queue"
	"github.com/xaibot/event-ticketing/internal/repository"
	"github.com/xaibot/event-ticketing/internal/router"
	"github.com/xaibot/event-ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client degrades the query cache and the
	// rate limiter to pass-through behavior.
	rdb := config.NewRedisClient()
	lists := cache.New(rdb, config.LoadQueryCacheConfig())

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	locks := lock.NewManager(db)

	eventSvc := service.NewEventService(events, lists)
	bookingSvc := service.NewBookingService(events, bookings, locks, lists, cfg.LockTimeout)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	eventH := handler.NewEventHandler(eventSvc)
	bookingH := handler.NewBookingHandler(bookingSvc)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterAPI(e, cfg, config.LoadRateLimitConfig(), rdb, authH, eventH, bookingH)

	// The consumer keeps its own reconnect loop; a broker outage only
	// pauses log delivery, never the API.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

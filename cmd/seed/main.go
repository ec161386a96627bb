package main // Seeds the database with demo data for local development.

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"

	"github.com/xaibot/event-ticketing/internal/config"
	"github.com/xaibot/event-ticketing/internal/database"
	"github.com/xaibot/event-ticketing/internal/model"
	"github.com/xaibot/event-ticketing/internal/repository"
)

func main() {
	count := flag.Int("events", 100, "number of events to create")
	email := flag.String("email", "seed@example.com", "owner account for the seeded events")
	password := flag.String("password", "password123", "owner account password")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)

	ownerID, err := users.Create(ctx, *email, *password, cfg.BcryptCost)
	if err == repository.ErrEmailExists {
		u, lookupErr := users.GetByEmail(ctx, *email)
		if lookupErr != nil {
			log.Fatalf("seed user lookup: %v", lookupErr)
		}
		ownerID = u.ID
	} else if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < *count; i++ {
		e := &model.Event{
			UserID:      ownerID,
			Name:        fmt.Sprintf("Seed Event %d", i+1),
			Description: "Generated by cmd/seed for local development",
			Address:     fmt.Sprintf("%d Example Street", rng.Intn(900)+100),
			StartsAt:    time.Now().UTC().AddDate(0, 0, rng.Intn(90)+1).Truncate(time.Minute),
			MaxTickets:  uint32(rng.Intn(490) + 10),
		}
		if err := events.Create(ctx, e); err != nil {
			log.Fatalf("create event %d: %v", i+1, err)
		}
	}

	var total uint64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil && err != sql.ErrNoRows {
		log.Fatalf("count events: %v", err)
	}
	log.Printf("seeded %d events (owner=%s, total events=%d)", *count, *email, total)
}

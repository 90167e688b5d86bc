package main

import (
	"context"
	"flag"
	"fmt"

	"evento/internal/auth"
	"evento/internal/clock"
	"evento/internal/config"
	"evento/internal/database"
	eventdb "evento/internal/events/db"
	"evento/internal/events/service"
	"evento/internal/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	adminName := flag.String("admin", "admin", "name for the printed admin token")
	userName := flag.String("user", "", "also print a token for a regular user with this name")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger(logger.Options{Service: "evento-seed", Level: cfg.Log.Level})
	defer log.Close()
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()
	clk := clock.NewSystem()

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	events := service.NewEventService(service.Options{
		DB:          eventdb.NewDB(bunDB, clk),
		Logger:      log,
		Clock:       clk,
		SaveRetries: cfg.App.SaveRetries,
	})
	created, err := service.Seed(ctx, events)
	if err != nil {
		log.Fatal("SEED", err.Error())
	}
	log.Info("SEED", fmt.Sprintf("Created %d events", created))

	jwt := auth.NewJWTHandler(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Expiry, clk)
	admin, err := jwt.CreateToken(uuid.NewString(), *adminName, auth.RoleAdmin)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}
	fmt.Printf("admin token (expires %s):\n%s\n", admin.Expires.Format("2006-01-02 15:04"), admin.Token)

	if *userName != "" {
		user, err := jwt.CreateToken(uuid.NewString(), *userName, auth.RoleUser)
		if err != nil {
			log.Fatal("AUTH", err.Error())
		}
		fmt.Printf("user token for %s:\n%s\n", *userName, user.Token)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"evento/internal/analytics"
	analyticsapi "evento/internal/analytics/api"
	"evento/internal/auth"
	"evento/internal/clock"
	"evento/internal/config"
	"evento/internal/database"
	"evento/internal/database/migrations"
	eventdb "evento/internal/events/db"
	"evento/internal/events/event_api"
	eventredis "evento/internal/events/redis"
	"evento/internal/events/service"
	"evento/internal/kafka"
	"evento/internal/logger"
	"evento/internal/sse"
	"evento/internal/tickets/pass"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(logger.Options{Service: "evento", Dir: cfg.Log.Dir, Level: cfg.Log.Level})
	defer log.Close()

	log.Info("APP", "Starting Evento service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()
	clk := clock.NewSystem()

	if cfg.App.AutoMigrate {
		runMigrations(ctx, cfg, log)
	}

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	inventory := sse.NewInventoryEmitter()
	opts := service.Options{
		DB:          eventdb.NewDB(bunDB, clk),
		Notifier:    inventory,
		Logger:      log,
		Clock:       clk,
		SaveRetries: cfg.App.SaveRetries,
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("REDIS", err.Error())
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts.Lock = eventredis.NewRedis(redisClient, cfg.Redis.LockTTL, log)
	}

	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		opts.Kafka = producer
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))
	} else {
		log.Info("KAFKA", "Kafka disabled, domain events will not be published")
	}

	qrSecret := cfg.App.QRSecretKey
	if qrSecret == "" {
		log.Warn("CONFIG", "QR_SECRET_KEY not set, deriving pass key from JWT_SECRET")
		qrSecret = cfg.Auth.JWTSecret
	}
	passes, err := pass.NewGenerator(qrSecret)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	eventService := service.NewEventService(opts)
	ticketService := service.NewTicketService(opts, passes)

	if cfg.App.SeedData {
		if _, err := service.Seed(ctx, eventService); err != nil {
			log.Error("SEED", err.Error())
		}
	}

	jwtHandler := auth.NewJWTHandler(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Expiry, clk)
	limiter := event_api.NewUserRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, log)
	handler := event_api.NewHandler(eventService, ticketService, jwtHandler, limiter, log)
	handler.Stream = inventory

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(event_api.RequestLogger(log))
	handler.RegisterRoutes(r)
	analyticsapi.NewHandler(analytics.NewService(analytics.NewDB(bunDB), log), jwtHandler, log).RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Evento service running on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Evento service shutdown complete")
	}
}

// runMigrations uses its own connection because the migrator closes the
// handle it is given.
func runMigrations(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	sqldb, err := database.OpenSQL(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	runner := migrations.NewRunner(sqldb, log)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("DATABASE", err.Error())
		}
	}()
	if err := runner.Up(); err != nil {
		log.Fatal("DATABASE", err.Error())
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/danielortega/bloodbank-backend/api/routes"
	"github.com/danielortega/bloodbank-backend/internal/auth"
	"github.com/danielortega/bloodbank-backend/internal/donations"
	"github.com/danielortega/bloodbank-backend/internal/donors"
	"github.com/danielortega/bloodbank-backend/internal/inventory"
	"github.com/danielortega/bloodbank-backend/internal/recipients"
	"github.com/danielortega/bloodbank-backend/internal/reports"
	"github.com/danielortega/bloodbank-backend/internal/requests"
	"github.com/danielortega/bloodbank-backend/internal/users"
	"github.com/danielortega/bloodbank-backend/pkg/auth/session"
	"github.com/danielortega/bloodbank-backend/pkg/config"
	"github.com/danielortega/bloodbank-backend/pkg/db"
	"github.com/danielortega/bloodbank-backend/pkg/logger"
	"github.com/danielortega/bloodbank-backend/pkg/metrics"
	"github.com/danielortega/bloodbank-backend/pkg/migrate"
	"github.com/danielortega/bloodbank-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	bbMetrics := metrics.NewBloodBankMetrics(prometheus.DefaultRegisterer)

	userRepo := users.NewRepository(dbClient.DB())
	donorRepo := donors.NewRepository(dbClient.DB())
	recipientRepo := recipients.NewRepository(dbClient.DB())
	requestRepo := requests.NewRepository(dbClient.DB())
	donationRepo := donations.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	reportRepo := reports.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, sessionManager, redisClient, cfg.JWT, cfg.AuthRateLimit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	donorService, err := donors.NewService(donorRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create donor service", err)
		os.Exit(1)
	}

	recipientService, err := recipients.NewService(recipientRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create recipient service", err)
		os.Exit(1)
	}

	requestService, err := requests.NewService(requestRepo, recipientRepo, bbMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create request service", err)
		os.Exit(1)
	}

	donationService, err := donations.NewService(dbClient, donationRepo, donorRepo, inventoryRepo, bbMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create donation service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, bbMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reportRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			donorService,
			recipientService,
			requestService,
			donationService,
			inventoryService,
			reportService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

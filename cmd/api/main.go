// Package main is the entry point for the resident portal API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/i20tominaga/resident-app/internal/api"
	"github.com/i20tominaga/resident-app/internal/auth"
	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/config"
	"github.com/i20tominaga/resident-app/internal/db"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/faq"
	"github.com/i20tominaga/resident-app/internal/health"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/notification"
	"github.com/i20tominaga/resident-app/internal/preference"
	"github.com/i20tominaga/resident-app/internal/relevance"
	"github.com/i20tominaga/resident-app/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Resident Portal API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	ctx := context.Background()

	// Relevance weights, optionally calibrated from file.
	weights := relevance.DefaultWeights()
	if cfg.RelevanceCalibrationPath != "" {
		loaded, err := relevance.LoadCalibration(cfg.RelevanceCalibrationPath)
		if err != nil {
			logger.Warn("using default relevance weights", "error", err)
		} else {
			weights = loaded
		}
	}

	// Repositories: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		users         building.UserRepository
		events        event.Repository
		notifications notification.Repository
		faqs          faq.Repository
		healthCfg     api.HealthHandlersConfig
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		users = building.NewPostgresUserRepository(conn)
		events = event.NewPostgresRepository(conn)
		notifications = notification.NewPostgresRepository(conn)
		faqs = faq.NewPostgresRepository(conn)
		healthCfg.DBChecker = health.NewDBChecker(conn)
		logger.Info("using postgres repositories")
	} else {
		users = building.NewInMemoryUserRepository()
		events = event.NewInMemoryRepository()
		notifications = notification.NewInMemoryRepository()
		faqs = faq.NewInMemoryRepository()
		logger.Info("using in-memory repositories")

		if cfg.SeedDir != "" {
			stores := seed.Stores{Users: users, Events: events, FAQs: faqs}
			if err := seed.Load(ctx, cfg.SeedDir, stores); err != nil {
				logger.Error("seed load failed", "error", err)
				os.Exit(1)
			}
			logger.Info("seed fixtures loaded", "dir", cfg.SeedDir)
		}
	}

	// Preference store and rate limiter: Redis when configured.
	var (
		prefs     preference.Store
		rateStore middleware.RateLimitStore
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		prefs = preference.NewRedisStore(client)
		rateStore = middleware.NewRedisRateLimitStore(client, logger)
		healthCfg.RedisChecker = health.NewRedisChecker(client)
		logger.Info("using redis preference store")
	} else {
		prefs = preference.NewInMemoryStore()
		rateStore = middleware.NewInMemoryRateLimitStore()
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	notifier := notification.NewService(users, prefs, notifications, weights)

	metrics := middleware.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		logger.Error("metrics registration failed", "error", err)
		os.Exit(1)
	}

	handler := api.NewRouter(api.RouterConfig{
		Users:          users,
		Events:         events,
		Notifications:  notifications,
		FAQs:           faqs,
		Prefs:          prefs,
		Weights:        weights,
		JWT:            jwtService,
		Notifier:       notifier,
		Metrics:        metrics,
		Registry:       registry,
		Health:         healthCfg,
		RateLimitStore: rateStore,
		GlobalLimit: middleware.RateLimitConfig{
			RequestsPerWindow: cfg.GlobalRateLimit,
			WindowDuration:    time.Minute,
		},
		AuthLimit: middleware.RateLimitConfig{
			RequestsPerWindow: cfg.AuthRateLimit,
			WindowDuration:    time.Minute,
		},
		CORS:   middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins),
		Logger: logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

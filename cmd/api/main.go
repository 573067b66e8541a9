// Package main is the entry point for the Ugur API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ugurtm/ugur-backend/internal/auth"
	"github.com/ugurtm/ugur-backend/internal/config"
	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/handler"
	"github.com/ugurtm/ugur-backend/internal/middleware"
	"github.com/ugurtm/ugur-backend/internal/push"
	"github.com/ugurtm/ugur-backend/internal/repo"
	"github.com/ugurtm/ugur-backend/internal/service"
	"github.com/ugurtm/ugur-backend/migrations"
	"github.com/ugurtm/ugur-backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.RunMigrations {
		if err := migrate(ctx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	tx := repo.NewTransactor(pool)

	notifier, closeNotifier, err := newNotifier(ctx, cfg, repos.DeviceTokens)
	if err != nil {
		slog.Error("failed to set up push notifications", "error", err)
		os.Exit(1)
	}
	defer closeNotifier()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	srv := handler.NewServer(handler.Services{
		Users: service.NewUserService(tx, repos.Users, repos.Profiles, domain.ProfilePolicy{
			DeleteDriverProfileOnRoleRemoval:    cfg.DeleteDriverProfileOnRoleRemoval,
			DeletePassengerProfileOnRoleRemoval: cfg.DeletePassengerProfileOnRoleRemoval,
		}),
		Tokens:        tokens,
		Profiles:      service.NewProfileService(repos.Profiles),
		Places:        service.NewPlaceService(repos.Places, repos.Users),
		Ugurs:         service.NewUgurService(tx, repos),
		Routes:        service.NewRouteService(repos),
		Bookings:      service.NewBookingService(tx, repos, cfg.BookingCapacityCheck),
		Loads:         service.NewLoadService(repos),
		Notifications: service.NewNotificationService(repos, notifier),
		CurrentPlaces: service.NewCurrentPlaceService(repos.CurrentPlaces),
		DeviceTokens:  service.NewDeviceTokenService(repos.DeviceTokens),
		Reviews:       service.NewReviewService(repos.Reviews, repos.Users),
		Importer:      service.NewImporterService(tx, repos.Users),
	}, spec.OpenAPI)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. Authentication is installed by the API router so
	// it can keep the public endpoints public.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes(tokens))

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}

// newNotifier picks the push backend: FCM when credentials are configured,
// then AMQP, else log-only.
func newNotifier(ctx context.Context, cfg config.Config, tokens repo.DeviceTokenRepo) (service.Notifier, func(), error) {
	switch {
	case cfg.FirebaseCredentialsFile != "" || cfg.FirebaseCredentialsBase64 != "":
		fcm, err := push.NewFCM(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseCredentialsBase64, tokens)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("push notifications via FCM")
		return fcm, func() {}, nil
	case cfg.AMQPURL != "":
		mq, err := push.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("push notifications via AMQP", "exchange", cfg.AMQPExchange)
		return mq, func() {
			if err := mq.Close(); err != nil {
				slog.Warn("close amqp connection", "error", err)
			}
		}, nil
	default:
		slog.Info("push notifications are logged only")
		return push.Log{}, func() {}, nil
	}
}

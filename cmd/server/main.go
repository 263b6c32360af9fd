// @title Event Check-in API
// @version 1.0
// @description Ticket verification, check-in and attendance counts for event operators.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventcheckin/config"
	_ "eventcheckin/docs"
	"eventcheckin/internal/adapters/auth"
	"eventcheckin/internal/adapters/authz"
	deliveryhttp "eventcheckin/internal/delivery/http"
	"eventcheckin/internal/delivery/http/controllers"
	"eventcheckin/internal/lib/sl"
	"eventcheckin/internal/repository/postgres"
	"eventcheckin/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	policy, err := authz.NewPolicy(cfg.AuthzPolicyPath)
	if err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	checkInRepo := postgres.NewCheckInRepository(db)
	roleRepo := postgres.NewEventRoleRepository(db)
	userRepo := postgres.NewUserRepository(db)

	authorizer := services.NewEventAuthorizer(eventRepo, roleRepo, policy)
	timeout := cfg.RequestTimeout

	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		ScanRateLimit:  cfg.ScanRateLimit,
		Ping:           db.PingContext,
	}, deliveryhttp.Controllers{
		CheckIn:  controllers.NewCheckInController(logger, services.NewCheckInService(ticketRepo, checkInRepo, eventRepo, authorizer, timeout)),
		Ticket:   controllers.NewTicketController(logger, services.NewTicketService(ticketRepo, attendeeRepo, authorizer, timeout)),
		Attendee: controllers.NewAttendeeController(logger, services.NewAttendeeService(eventRepo, attendeeRepo, ticketRepo, authorizer, timeout)),
		Event:    controllers.NewEventController(logger, services.NewEventService(eventRepo, roleRepo, userRepo, authorizer, timeout)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr), slog.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

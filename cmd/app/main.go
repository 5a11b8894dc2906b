package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/config"
	bookingCancel "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/cancel"
	bookingComplete "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/complete"
	bookingConfirm "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/confirm"
	bookingCreate "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/create"
	bookingGet "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/get"
	bookingNoShow "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/noshow"
	bookingReject "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/reject"
	bookingValidate "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/bookings/validate"
	slotGet "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/http-server/handlers/slots/get"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/lock"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/notify"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	svc "github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/service"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/storage/postgres"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/handlers/slogpretty"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/middleware/mwlogger"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	notifier, err := notify.NewRedisPublisher(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init notifier", sl.Err(err))
		os.Exit(1)
	}

	policy := schedule.Policy{
		MinimumNoticeHours:          cfg.Scheduling.MinimumNoticeHours,
		CancellationDeadlineHours:   cfg.Scheduling.CancellationDeadlineHours,
		BufferMinutes:               cfg.Scheduling.BufferMinutes,
		SlotStepMinutes:             cfg.Scheduling.SlotStepMinutes,
		MaxDurationMinutes:          cfg.Scheduling.MaxDurationMinutes,
		MaxActualDurationMinutes:    cfg.Scheduling.MaxActualDurationMinutes,
		MaxBookingsPerStudentPerDay: cfg.Scheduling.MaxBookingsPerStudentPerDay,
		AdminExemptFromDeadline:     cfg.Scheduling.AdminExemptFromDeadline,
	}

	service := svc.NewService(storage, locker, notifier, policy, log)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Post("/bookings/validate", bookingValidate.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Post("/bookings/{id}/confirm", bookingConfirm.New(log, service))
	router.Post("/bookings/{id}/cancel", bookingCancel.New(log, service))
	router.Post("/bookings/{id}/reject", bookingReject.New(log, service))
	router.Post("/bookings/{id}/complete", bookingComplete.New(log, service))
	router.Post("/bookings/{id}/no_show", bookingNoShow.New(log, service))

	// Slots
	router.Get("/slots", slotGet.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	}

	if err := notifier.Close(); err != nil {
		log.Error("Failed to close notifier", sl.Err(err))
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

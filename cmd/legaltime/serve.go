package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/makarovada/legal-time/internal/jobs"
)

const (
	shutdownTimeout = 10 * time.Second
	jobTimeout      = 5 * time.Minute
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled maintenance jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					a.logger.Error("failed to close storage", "error", cerr)
				}
			}()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	scheduler := jobs.NewScheduler(a.logger, jobTimeout)
	if a.calendar.Enabled() {
		if err := scheduler.ScheduleCalendarSweep(a.cfg.CalendarSweepSchedule, a.calendar); err != nil {
			return err
		}
	}
	if err := scheduler.ScheduleRateRecalculation(a.cfg.RecalculateSchedule, a.timeEntries); err != nil {
		return err
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr(),
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
		}
		scheduler.Stop(shutdownCtx)
	}()

	a.logger.Info("legal time API listening", "addr", server.Addr, "calendar_enabled", a.calendar.Enabled(), "jobs", scheduler.Len())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
)

// SystemPrincipal is the identity maintenance jobs act as.
var SystemPrincipal = application.Principal{EmployeeID: "system", Role: access.RoleAdmin}

// CalendarSweeper pushes every unsynced entry of linked employees.
type CalendarSweeper interface {
	SweepAll(ctx context.Context) (application.SyncResult, error)
}

// RateRecalculator refreshes the rate reference of every entry.
type RateRecalculator interface {
	RecalculateRates(ctx context.Context, principal application.Principal) (application.RecalculateResult, error)
}

// Scheduler wraps a cron runner. Jobs never overlap with themselves: a run
// still in progress when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler builds a scheduler evaluating specs in UTC. Each run is
// bounded by timeout when positive.
func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// ScheduleCalendarSweep registers the sweep under spec. An empty spec leaves
// the job disabled.
func (s *Scheduler) ScheduleCalendarSweep(spec string, sweeper CalendarSweeper) error {
	return s.schedule("calendar_sweep", spec, func(ctx context.Context) ([]any, error) {
		result, err := sweeper.SweepAll(ctx)
		return []any{"synced", result.Synced, "failed", result.Failed, "total", result.Total}, err
	})
}

// ScheduleRateRecalculation registers the recalculation under spec. An
// empty spec leaves the job disabled.
func (s *Scheduler) ScheduleRateRecalculation(spec string, recalculator RateRecalculator) error {
	return s.schedule("recalculate_rates", spec, func(ctx context.Context) ([]any, error) {
		result, err := recalculator.RecalculateRates(ctx, SystemPrincipal)
		return []any{"examined", result.Examined, "updated", result.Updated}, err
	})
}

func (s *Scheduler) schedule(name, spec string, run func(context.Context) ([]any, error)) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(name, run) }); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) runOnce(name string, run func(context.Context) ([]any, error)) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	attrs, err := run(ctx)
	logger := s.logger.With("job", name, "duration", time.Since(started))
	if err != nil {
		logger.Error("job failed", "error", err, "error_kind", application.ErrorKind(err))
		return
	}
	logger.Info("job completed", attrs...)
}

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

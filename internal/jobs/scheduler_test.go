package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
)

type sweeperStub struct {
	calls int
	err   error
}

func (s *sweeperStub) SweepAll(context.Context) (application.SyncResult, error) {
	s.calls++
	return application.SyncResult{Synced: 2, Total: 2}, s.err
}

type recalculatorStub struct {
	principal application.Principal
	calls     int
}

func (r *recalculatorStub) RecalculateRates(_ context.Context, principal application.Principal) (application.RecalculateResult, error) {
	r.calls++
	r.principal = principal
	return application.RecalculateResult{Examined: 3, Updated: 1}, nil
}

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
}

func TestSchedulerRegistration(t *testing.T) {
	t.Parallel()

	t.Run("empty spec disables job", func(t *testing.T) {
		s := newTestScheduler()
		if err := s.ScheduleCalendarSweep("", &sweeperStub{}); err != nil {
			t.Fatalf("ScheduleCalendarSweep returned error: %v", err)
		}
		if s.Len() != 0 {
			t.Fatalf("expected no registered jobs, got %d", s.Len())
		}
	})

	t.Run("valid specs", func(t *testing.T) {
		s := newTestScheduler()
		if err := s.ScheduleCalendarSweep("@every 15m", &sweeperStub{}); err != nil {
			t.Fatalf("ScheduleCalendarSweep returned error: %v", err)
		}
		if err := s.ScheduleRateRecalculation("0 3 * * *", &recalculatorStub{}); err != nil {
			t.Fatalf("ScheduleRateRecalculation returned error: %v", err)
		}
		if s.Len() != 2 {
			t.Fatalf("expected 2 registered jobs, got %d", s.Len())
		}
	})

	t.Run("invalid spec", func(t *testing.T) {
		s := newTestScheduler()
		if err := s.ScheduleCalendarSweep("every now and then", &sweeperStub{}); err == nil {
			t.Fatalf("expected invalid spec to be rejected")
		}
	})
}

func TestSchedulerRunOnce(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	recalculator := &recalculatorStub{}
	s.runOnce("recalculate_rates", func(ctx context.Context) ([]any, error) {
		result, err := recalculator.RecalculateRates(ctx, SystemPrincipal)
		return []any{"updated", result.Updated}, err
	})
	if recalculator.calls != 1 {
		t.Fatalf("expected one run, got %d", recalculator.calls)
	}
	if recalculator.principal.Role != access.RoleAdmin {
		t.Fatalf("expected jobs to act as admin, got %q", recalculator.principal.Role)
	}

	sweeper := &sweeperStub{err: errors.New("storage down")}
	s.runOnce("calendar_sweep", func(ctx context.Context) ([]any, error) {
		_, err := sweeper.SweepAll(ctx)
		return nil, err
	})
	if sweeper.calls != 1 {
		t.Fatalf("expected failing sweep to run once, got %d", sweeper.calls)
	}
}

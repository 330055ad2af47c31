package application

import (
	"context"
	"errors"
	"testing"
)

type linkerStub struct {
	exchanged string
	err       error
}

func (l *linkerStub) AuthURL(state string) string { return "https://consent.example/?state=" + state }

func (l *linkerStub) Exchange(_ context.Context, code string) ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.exchanged = code
	return []byte("sealed:" + code), nil
}

type stateStub struct{}

func (stateStub) IssueState(employeeID string) (string, error) { return "state:" + employeeID, nil }

func (stateStub) ParseState(state string) (string, error) {
	if len(state) < 7 || state[:6] != "state:" {
		return "", errors.New("bad state")
	}
	return state[6:], nil
}

func TestCalendarService_Linking(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled integration", func(t *testing.T) {
		w := newTestWorld(t)
		svc := NewCalendarService(CalendarServiceDeps{Employees: w.store, Entries: w.store, Sync: NoopCalendar{}})

		if _, err := svc.AuthURL(ctx, principalOf(w.lawyer)); !errors.Is(err, ErrCalendarUnavailable) {
			t.Fatalf("expected ErrCalendarUnavailable, got %v", err)
		}
		if _, err := svc.Connect(ctx, "state:"+w.lawyer.ID, "code"); !errors.Is(err, ErrCalendarUnavailable) {
			t.Fatalf("expected ErrCalendarUnavailable, got %v", err)
		}
	})

	t.Run("connect stores sealed credential", func(t *testing.T) {
		w := newTestWorld(t)
		linker := &linkerStub{}
		svc := NewCalendarService(CalendarServiceDeps{Employees: w.store, Entries: w.store, Sync: NoopCalendar{}, Linker: linker, States: stateStub{}, Now: fixedNow})

		url, err := svc.AuthURL(ctx, principalOf(w.lawyer))
		if err != nil {
			t.Fatalf("AuthURL returned error: %v", err)
		}
		if url != "https://consent.example/?state=state:"+w.lawyer.ID {
			t.Fatalf("unexpected url %q", url)
		}

		employee, err := svc.Connect(ctx, "state:"+w.lawyer.ID, " abc ")
		if err != nil {
			t.Fatalf("Connect returned error: %v", err)
		}
		if string(employee.CalendarToken) != "sealed:abc" || linker.exchanged != "abc" {
			t.Fatalf("expected sealed credential to be stored, got %q", employee.CalendarToken)
		}

		if err := svc.Disconnect(ctx, principalOf(w.lawyer)); err != nil {
			t.Fatalf("Disconnect returned error: %v", err)
		}
		if w.store.employees[w.lawyer.ID].CalendarConnected() {
			t.Fatalf("expected calendar to be disconnected")
		}
	})

	t.Run("rejects forged state", func(t *testing.T) {
		w := newTestWorld(t)
		svc := NewCalendarService(CalendarServiceDeps{Employees: w.store, Entries: w.store, Linker: &linkerStub{}, States: stateStub{}})

		if _, err := svc.Connect(ctx, "forged", "code"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestCalendarService_Sync(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t)
	entries := w.timeEntries()

	for _, matter := range []Matter{w.matterA, w.matterB} {
		if _, err := entries.Create(ctx, CreateTimeEntryParams{Principal: principalOf(w.lawyer), Input: w.entryInput(matter, 1)}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	if _, err := entries.Create(ctx, CreateTimeEntryParams{Principal: principalOf(w.senior), Input: w.entryInput(w.matterA, 1)}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	calendar := &calendarStub{}
	svc := NewCalendarService(CalendarServiceDeps{
		Employees:  w.store,
		Entries:    w.store,
		Matters:    w.store,
		Activities: w.store,
		Sync:       calendar,
	})

	if _, err := svc.SyncUnsynced(ctx, principalOf(w.lawyer)); err == nil {
		t.Fatalf("expected sync without linked calendar to fail")
	}

	for _, id := range []string{w.lawyer.ID, w.senior.ID} {
		employee := w.store.employees[id]
		employee.CalendarToken = []byte("sealed")
		w.store.employees[id] = employee
	}

	result, err := svc.SyncUnsynced(ctx, principalOf(w.lawyer))
	if err != nil {
		t.Fatalf("SyncUnsynced returned error: %v", err)
	}
	if result != (SyncResult{Synced: 2, Total: 2}) {
		t.Fatalf("unexpected result %+v", result)
	}

	calendar.err = errCalendarDown
	swept, err := svc.SweepAll(ctx)
	if err != nil {
		t.Fatalf("SweepAll returned error: %v", err)
	}
	if swept != (SyncResult{Failed: 1, Total: 1}) {
		t.Fatalf("expected only the senior entry to be attempted, got %+v", swept)
	}

	calendar.err = nil
	swept, err = svc.SweepAll(ctx)
	if err != nil {
		t.Fatalf("SweepAll returned error: %v", err)
	}
	if swept != (SyncResult{Synced: 1, Total: 1}) {
		t.Fatalf("expected rerun to pick up the failed entry, got %+v", swept)
	}
}

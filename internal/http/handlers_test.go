package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
)

var (
	lawyer = application.Principal{EmployeeID: "emp-lawyer", Role: access.RoleLawyer}
	senior = application.Principal{EmployeeID: "emp-senior", Role: access.RoleSeniorLawyer}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authenticatorStub map[string]application.Principal

func (a authenticatorStub) Authenticate(_ context.Context, token string) (application.Principal, error) {
	principal, ok := a[token]
	if !ok {
		return application.Principal{}, application.ErrInvalidCredentials
	}
	return principal, nil
}

type timeEntryServiceStub struct {
	created  application.CreateTimeEntryParams
	entries  []application.TimeEntry
	err      error
	approved string
}

func (s *timeEntryServiceStub) Create(_ context.Context, params application.CreateTimeEntryParams) (application.TimeEntry, error) {
	s.created = params
	if s.err != nil {
		return application.TimeEntry{}, s.err
	}
	rateID := "rate-1"
	return application.TimeEntry{
		ID: "entry-1", EmployeeID: params.Principal.EmployeeID, MatterID: params.Input.MatterID,
		ActivityTypeID: params.Input.ActivityTypeID, RateID: &rateID, Hours: params.Input.Hours,
		Date: time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC), Status: application.StatusDraft,
	}, nil
}

func (s *timeEntryServiceStub) Update(context.Context, application.UpdateTimeEntryParams) (application.TimeEntry, error) {
	return application.TimeEntry{}, s.err
}

func (s *timeEntryServiceStub) Approve(_ context.Context, _ application.Principal, id string) (application.TimeEntry, error) {
	s.approved = id
	return application.TimeEntry{ID: id, Status: application.StatusApproved}, s.err
}

func (s *timeEntryServiceStub) Delete(context.Context, application.Principal, string) error {
	return s.err
}

func (s *timeEntryServiceStub) Get(_ context.Context, _ application.Principal, id string) (application.TimeEntry, error) {
	return application.TimeEntry{ID: id}, s.err
}

func (s *timeEntryServiceStub) ListOwn(context.Context, application.Principal, application.Page) ([]application.TimeEntry, error) {
	return s.entries, s.err
}

func (s *timeEntryServiceStub) Filter(context.Context, application.Principal, application.TimeEntryFilter) ([]application.TimeEntry, error) {
	return s.entries, s.err
}

func (s *timeEntryServiceStub) ListPending(context.Context, application.Principal, application.Page) ([]application.TimeEntry, error) {
	return s.entries, s.err
}

func (s *timeEntryServiceStub) RecalculateRates(context.Context, application.Principal) (application.RecalculateResult, error) {
	return application.RecalculateResult{Examined: 4, Updated: 1}, s.err
}

type reportServiceStub struct {
	filter application.ReportFilter
}

func (s *reportServiceStub) Report(_ context.Context, _ application.Principal, filter application.ReportFilter) ([]application.ReportRow, error) {
	s.filter = filter
	rate := 4500.0
	return []application.ReportRow{{EntryID: "entry-1", Hours: 2, RateValue: &rate, Amount: 9000, Status: application.StatusApproved}}, nil
}

func (s *reportServiceStub) Export(_ context.Context, principal application.Principal, _ application.ReportFilter) ([]byte, error) {
	if !principal.Role.Elevated() {
		return nil, application.ErrForbidden
	}
	return []byte("xlsx"), nil
}

type calendarSyncStub struct{}

func (calendarSyncStub) SyncUnsynced(context.Context, application.Principal) (application.SyncResult, error) {
	return application.SyncResult{Synced: 1, Total: 1}, nil
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }

func newTestRouter(entries *timeEntryServiceStub, reports *reportServiceStub) http.Handler {
	logger := discardLogger()
	return NewRouter(RouterConfig{
		TimeEntries:   NewTimeEntryHandler(entries, reports, calendarSyncStub{}, logger),
		Authenticator: authenticatorStub{"lawyer-token": lawyer, "senior-token": senior},
		Health:        pingerStub{},
		Logger:        logger,
		Middleware:    []func(http.Handler) http.Handler{RequestLogger(logger)},
	})
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(recorder.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", recorder.Body.String(), err)
	}
	return out
}

func TestTimeEntryHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create passes the caller and returns 201", func(t *testing.T) {
		t.Parallel()
		entries := &timeEntryServiceStub{}
		router := newTestRouter(entries, &reportServiceStub{})

		recorder := doRequest(t, router, http.MethodPost, "/time-entries", "lawyer-token", map[string]any{
			"matter_id": "matter-1", "activity_type_id": "act-1", "hours": 2, "date": "2024-05-06",
		})
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if entries.created.Principal != lawyer || entries.created.Input.Date != "2024-05-06" {
			t.Fatalf("unexpected params %+v", entries.created)
		}
		dto := decodeBody[timeEntryDTO](t, recorder)
		if dto.Status != "draft" || dto.Date != "2024-05-06" || dto.RateID == nil || *dto.RateID != "rate-1" {
			t.Fatalf("unexpected response %+v", dto)
		}
	})

	t.Run("empty listing encodes as array", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&timeEntryServiceStub{}, &reportServiceStub{})

		recorder := doRequest(t, router, http.MethodGet, "/time-entries", "lawyer-token", nil)
		if recorder.Code != http.StatusOK || strings.TrimSpace(recorder.Body.String()) != "[]" {
			t.Fatalf("expected 200 with [], got %d %q", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("fixed paths win over id routes", func(t *testing.T) {
		t.Parallel()
		entries := &timeEntryServiceStub{}
		router := newTestRouter(entries, &reportServiceStub{})

		recorder := doRequest(t, router, http.MethodPatch, "/time-entries/entry-9/approve", "senior-token", nil)
		if recorder.Code != http.StatusOK || entries.approved != "entry-9" {
			t.Fatalf("expected approval of entry-9, got %d (%q)", recorder.Code, entries.approved)
		}

		recorder = doRequest(t, router, http.MethodPost, "/time-entries/recalculate-rates", "senior-token", nil)
		result := decodeBody[recalculateResponse](t, recorder)
		if result.Examined != 4 || result.Updated != 1 {
			t.Fatalf("unexpected recalculation response %+v", result)
		}
	})

	t.Run("report forwards query filters", func(t *testing.T) {
		t.Parallel()
		reports := &reportServiceStub{}
		router := newTestRouter(&timeEntryServiceStub{}, reports)

		recorder := doRequest(t, router, http.MethodGet, "/time-entries/report?client_id=client-1&start_date=2024-05-01", "senior-token", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if reports.filter.ClientID != "client-1" || reports.filter.StartDate != "2024-05-01" {
			t.Fatalf("unexpected filter %+v", reports.filter)
		}
		rows := decodeBody[[]reportRowDTO](t, recorder)
		if len(rows) != 1 || rows[0].Amount != 9000 {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("xlsx export sets attachment headers", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&timeEntryServiceStub{}, &reportServiceStub{})

		recorder := doRequest(t, router, http.MethodGet, "/time-entries/report.xlsx", "senior-token", nil)
		if recorder.Code != http.StatusOK || recorder.Body.String() != "xlsx" {
			t.Fatalf("expected workbook bytes, got %d %q", recorder.Code, recorder.Body.String())
		}
		if !strings.Contains(recorder.Header().Get("Content-Disposition"), "attachment") {
			t.Fatalf("expected attachment disposition, got %q", recorder.Header().Get("Content-Disposition"))
		}

		recorder = doRequest(t, router, http.MethodGet, "/time-entries/report.xlsx", "lawyer-token", nil)
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for lawyer export, got %d", recorder.Code)
		}
	})
}

func TestServiceErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", application.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", application.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"conflict", &application.ConflictError{Reason: "client has 1 contract(s)"}, http.StatusConflict, "CONFLICT"},
		{"validation", &application.ValidationError{FieldErrors: map[string]string{"hours": "hours must be positive"}}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"calendar disabled", application.ErrCalendarUnavailable, http.StatusUnprocessableEntity, "CALENDAR_UNAVAILABLE"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter(&timeEntryServiceStub{err: tc.err}, &reportServiceStub{})

			recorder := doRequest(t, router, http.MethodGet, "/time-entries/entry-1", "lawyer-token", nil)
			if recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, recorder.Code)
			}
			body := decodeBody[errorResponse](t, recorder)
			if body.ErrorCode != tc.code {
				t.Fatalf("expected error code %q, got %q", tc.code, body.ErrorCode)
			}
			if tc.code == "CONFLICT" && body.Message != "client has 1 contract(s)" {
				t.Fatalf("expected conflict reason in message, got %q", body.Message)
			}
			if tc.code == "VALIDATION_FAILED" && body.Errors["hours"] == "" {
				t.Fatalf("expected field errors, got %+v", body.Errors)
			}
		})
	}
}

func TestMalformedRequests(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&timeEntryServiceStub{}, &reportServiceStub{})

	recorder := doRequest(t, router, http.MethodPost, "/time-entries", "lawyer-token", "{not json")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", recorder.Code)
	}

	recorder = doRequest(t, router, http.MethodGet, "/time-entries?limit=-1", "lawyer-token", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", recorder.Code)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&timeEntryServiceStub{}, &reportServiceStub{})

	recorder := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected healthz to be public, got %d", recorder.Code)
	}
	if recorder.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}

	failing := NewRouter(RouterConfig{Health: pingerStub{err: errors.New("db closed")}, Logger: discardLogger()})
	recorder = doRequest(t, failing, http.MethodGet, "/healthz", "", nil)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when storage is down, got %d", recorder.Code)
	}
}

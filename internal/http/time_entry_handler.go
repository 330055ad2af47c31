package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/export"
)

type timeEntryService interface {
	Create(ctx context.Context, params application.CreateTimeEntryParams) (application.TimeEntry, error)
	Update(ctx context.Context, params application.UpdateTimeEntryParams) (application.TimeEntry, error)
	Approve(ctx context.Context, principal application.Principal, entryID string) (application.TimeEntry, error)
	Delete(ctx context.Context, principal application.Principal, entryID string) error
	Get(ctx context.Context, principal application.Principal, entryID string) (application.TimeEntry, error)
	ListOwn(ctx context.Context, principal application.Principal, page application.Page) ([]application.TimeEntry, error)
	Filter(ctx context.Context, principal application.Principal, filter application.TimeEntryFilter) ([]application.TimeEntry, error)
	ListPending(ctx context.Context, principal application.Principal, page application.Page) ([]application.TimeEntry, error)
	RecalculateRates(ctx context.Context, principal application.Principal) (application.RecalculateResult, error)
}

type reportService interface {
	Report(ctx context.Context, principal application.Principal, filter application.ReportFilter) ([]application.ReportRow, error)
	Export(ctx context.Context, principal application.Principal, filter application.ReportFilter) ([]byte, error)
}

type calendarSyncService interface {
	SyncUnsynced(ctx context.Context, principal application.Principal) (application.SyncResult, error)
}

// TimeEntryHandler serves the time entry lifecycle, listings and reports.
type TimeEntryHandler struct {
	baseHandler
	entries  timeEntryService
	reports  reportService
	calendar calendarSyncService
	now      func() time.Time
}

func NewTimeEntryHandler(entries timeEntryService, reports reportService, calendar calendarSyncService, logger *slog.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		baseHandler: newBaseHandler("TimeEntryHandler", logger),
		entries:     entries,
		reports:     reports,
		calendar:    calendar,
		now:         time.Now,
	}
}

func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req timeEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Create", err)
		return
	}
	principal := principalOf(r)
	entry, err := h.entries.Create(r.Context(), application.CreateTimeEntryParams{Principal: principal, Input: req.toInput()})
	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "time_entry_id", entry.ID)
	h.finish(w, r, logger, http.StatusCreated, toTimeEntryDTO(entry), err, "time entry creation")
}

func (h *TimeEntryHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		h.badRequest(w, r, "ListOwn", err)
		return
	}
	principal := principalOf(r)
	entries, err := h.entries.ListOwn(r.Context(), principal, page)
	h.finish(w, r, h.log(r.Context(), "ListOwn", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(entries, toTimeEntryDTO), err, "own time entry listing")
}

func (h *TimeEntryHandler) Filter(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		h.badRequest(w, r, "Filter", err)
		return
	}
	query := r.URL.Query()
	filter := application.TimeEntryFilter{
		EmployeeID: query.Get("employee_id"),
		Status:     query.Get("status"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
		Page:       page,
	}
	principal := principalOf(r)
	entries, err := h.entries.Filter(r.Context(), principal, filter)
	h.finish(w, r, h.log(r.Context(), "Filter", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(entries, toTimeEntryDTO), err, "time entry filter")
}

func (h *TimeEntryHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		h.badRequest(w, r, "ListPending", err)
		return
	}
	principal := principalOf(r)
	entries, err := h.entries.ListPending(r.Context(), principal, page)
	h.finish(w, r, h.log(r.Context(), "ListPending", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(entries, toTimeEntryDTO), err, "pending time entry listing")
}

func (h *TimeEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Get", err)
		return
	}
	principal := principalOf(r)
	entry, err := h.entries.Get(r.Context(), principal, id)
	h.finish(w, r, h.log(r.Context(), "Get", "principal_id", principal.EmployeeID, "time_entry_id", id), http.StatusOK, toTimeEntryDTO(entry), err, "time entry lookup")
}

func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	var req timeEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	principal := principalOf(r)
	entry, err := h.entries.Update(r.Context(), application.UpdateTimeEntryParams{Principal: principal, EntryID: id, Input: req.toInput()})
	h.finish(w, r, h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "time_entry_id", id), http.StatusOK, toTimeEntryDTO(entry), err, "time entry update")
}

func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Delete", err)
		return
	}
	principal := principalOf(r)
	err = h.entries.Delete(r.Context(), principal, id)
	h.finish(w, r, h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "time_entry_id", id), http.StatusNoContent, nil, err, "time entry deletion")
}

func (h *TimeEntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Approve", err)
		return
	}
	principal := principalOf(r)
	entry, err := h.entries.Approve(r.Context(), principal, id)
	h.finish(w, r, h.log(r.Context(), "Approve", "principal_id", principal.EmployeeID, "time_entry_id", id), http.StatusOK, toTimeEntryDTO(entry), err, "time entry approval")
}

func (h *TimeEntryHandler) RecalculateRates(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	result, err := h.entries.RecalculateRates(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "RecalculateRates", "principal_id", principal.EmployeeID), http.StatusOK, recalculateResponse{
		Examined: result.Examined,
		Updated:  result.Updated,
	}, err, "rate recalculation")
}

func (h *TimeEntryHandler) Report(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	rows, err := h.reports.Report(r.Context(), principal, reportFilterFromQuery(r))
	h.finish(w, r, h.log(r.Context(), "Report", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(rows, toReportRowDTO), err, "report")
}

func (h *TimeEntryHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	logger := h.log(r.Context(), "ExportReport", "principal_id", principal.EmployeeID)

	data, err := h.reports.Export(r.Context(), principal, reportFilterFromQuery(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "report export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	filename := fmt.Sprintf("time_entries_report_%s.xlsx", h.now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.ErrorContext(r.Context(), "failed to write report", "error", err)
		return
	}
	logger.With("bytes", len(data)).InfoContext(r.Context(), "report exported")
}

func (h *TimeEntryHandler) SyncToCalendar(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	result, err := h.calendar.SyncUnsynced(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "SyncToCalendar", "principal_id", principal.EmployeeID), http.StatusOK, syncResponse{
		Synced: result.Synced,
		Failed: result.Failed,
		Total:  result.Total,
	}, err, "calendar sync")
}

func reportFilterFromQuery(r *http.Request) application.ReportFilter {
	query := r.URL.Query()
	return application.ReportFilter{
		EmployeeID: strings.TrimSpace(query.Get("employee_id")),
		MatterID:   strings.TrimSpace(query.Get("matter_id")),
		ContractID: strings.TrimSpace(query.Get("contract_id")),
		ClientID:   strings.TrimSpace(query.Get("client_id")),
		StartDate:  strings.TrimSpace(query.Get("start_date")),
		EndDate:    strings.TrimSpace(query.Get("end_date")),
	}
}

type timeEntryRequest struct {
	MatterID       string  `json:"matter_id"`
	ActivityTypeID string  `json:"activity_type_id"`
	Hours          float64 `json:"hours"`
	Description    string  `json:"description"`
	Date           string  `json:"date"`
}

func (r timeEntryRequest) toInput() application.TimeEntryInput {
	return application.TimeEntryInput{
		MatterID:       strings.TrimSpace(r.MatterID),
		ActivityTypeID: strings.TrimSpace(r.ActivityTypeID),
		Hours:          r.Hours,
		Description:    strings.TrimSpace(r.Description),
		Date:           strings.TrimSpace(r.Date),
	}
}

type recalculateResponse struct {
	Examined int `json:"examined"`
	Updated  int `json:"updated"`
}

type syncResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

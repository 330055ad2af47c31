package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// TimeEntryService owns the time entry lifecycle: creation, editing,
// approval, deletion and rate recalculation.
type TimeEntryService struct {
	entries     TimeEntryRepository
	matters     MatterRepository
	activities  ActivityTypeRepository
	resolver    *RateResolver
	calendar    *calendarBridge
	metrics     Metrics
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTimeEntryService wires dependencies for time entry operations.
func NewTimeEntryService(entries TimeEntryRepository, matters MatterRepository, activities ActivityTypeRepository, resolver *RateResolver, idGenerator func() string, now func() time.Time) *TimeEntryService {
	return NewTimeEntryServiceWithLogger(entries, matters, activities, resolver, idGenerator, now, nil)
}

// NewTimeEntryServiceWithLogger wires dependencies with a specified logger.
func NewTimeEntryServiceWithLogger(entries TimeEntryRepository, matters MatterRepository, activities ActivityTypeRepository, resolver *RateResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TimeEntryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TimeEntryService{
		entries:     entries,
		matters:     matters,
		activities:  activities,
		resolver:    resolver,
		metrics:     noopMetrics{},
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// WithCalendar enables best effort calendar mirroring for entry owners that
// linked a calendar. employees is used to look up the owner.
func (s *TimeEntryService) WithCalendar(sync CalendarSync, employees EmployeeRepository, timeout time.Duration) *TimeEntryService {
	s.calendar = &calendarBridge{
		sync:       sync,
		employees:  employees,
		matters:    s.matters,
		activities: s.activities,
		entries:    s.entries,
		metrics:    s.metrics,
		timeout:    timeout,
	}
	return s
}

// WithMetrics records operation outcomes into m.
func (s *TimeEntryService) WithMetrics(m Metrics) *TimeEntryService {
	s.metrics = defaultMetrics(m)
	if s.calendar != nil {
		s.calendar.metrics = s.metrics
	}
	return s
}

func (s *TimeEntryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimeEntryService", operation, attrs...)
}

func (s *TimeEntryService) ready() error {
	if s == nil {
		return fmt.Errorf("TimeEntryService is nil")
	}
	if s.entries == nil {
		return fmt.Errorf("time entry repository not configured")
	}
	if s.resolver == nil {
		return fmt.Errorf("rate resolver not configured")
	}
	return nil
}

// Create records a draft entry owned by the caller and resolves its rate.
func (s *TimeEntryService) Create(ctx context.Context, params CreateTimeEntryParams) (entry TimeEntry, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Create",
		"principal_id", params.Principal.EmployeeID,
		"matter_id", params.Input.MatterID,
	)
	defer func() {
		s.metrics.ObserveTimeEntryOperation("create", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create time entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("time_entry_id", entry.ID, "rate_id", derefString(entry.RateID)).InfoContext(ctx, "time entry created")
	}()

	if err = checkAccess(params.Principal, access.Op(access.ResourceTimeEntry, access.ActionCreate), true); err != nil {
		return
	}

	var date time.Time
	date, err = s.validateInput(ctx, params.Input)
	if err != nil {
		return
	}

	matterID := strings.TrimSpace(params.Input.MatterID)

	var rate Rate
	rate, err = s.resolver.Resolve(ctx, params.Principal.EmployeeID, matterID)
	if err != nil {
		return
	}

	now := s.now()
	entry = TimeEntry{
		ID:             s.idGenerator(),
		EmployeeID:     params.Principal.EmployeeID,
		MatterID:       matterID,
		ActivityTypeID: strings.TrimSpace(params.Input.ActivityTypeID),
		RateID:         &rate.ID,
		Hours:          params.Input.Hours,
		Description:    strings.TrimSpace(params.Input.Description),
		Date:           date,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	entry, err = s.entries.CreateTimeEntry(ctx, entry)
	if err != nil {
		err = mapRepoError(err, "time entry already exists", "")
		return
	}

	entry, _ = s.calendar.upsert(ctx, logger, entry, true)
	return
}

// Update edits an entry. The owner never changes and the rate is re-resolved
// from the owner and the new matter. Status is left untouched.
func (s *TimeEntryService) Update(ctx context.Context, params UpdateTimeEntryParams) (entry TimeEntry, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Update",
		"principal_id", params.Principal.EmployeeID,
		"time_entry_id", params.EntryID,
	)
	defer func() {
		s.metrics.ObserveTimeEntryOperation("update", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to update time entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rate_id", derefString(entry.RateID)).InfoContext(ctx, "time entry updated")
	}()

	var existing TimeEntry
	existing, err = s.entries.GetTimeEntry(ctx, params.EntryID)
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	owned := params.Principal.Owns(existing.EmployeeID)
	if err = checkAccess(params.Principal, access.Op(access.ResourceTimeEntry, access.ActionUpdate), owned); err != nil {
		return
	}

	var date time.Time
	date, err = s.validateInput(ctx, params.Input)
	if err != nil {
		return
	}

	matterID := strings.TrimSpace(params.Input.MatterID)

	var rate Rate
	rate, err = s.resolver.Resolve(ctx, existing.EmployeeID, matterID)
	if err != nil {
		return
	}

	updated := existing
	updated.MatterID = matterID
	updated.ActivityTypeID = strings.TrimSpace(params.Input.ActivityTypeID)
	updated.Hours = params.Input.Hours
	updated.Description = strings.TrimSpace(params.Input.Description)
	updated.Date = date
	updated.RateID = &rate.ID
	updated.UpdatedAt = s.now()

	entry, err = s.entries.UpdateTimeEntry(ctx, updated)
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	entry, _ = s.calendar.upsert(ctx, logger, entry, true)
	return
}

// Approve marks an entry approved. Approving an approved entry skips the
// store write but still re-syncs the calendar event.
func (s *TimeEntryService) Approve(ctx context.Context, principal Principal, entryID string) (entry TimeEntry, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Approve",
		"principal_id", principal.EmployeeID,
		"time_entry_id", entryID,
	)
	defer func() {
		s.metrics.ObserveTimeEntryOperation("approve", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to approve time entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "time entry approved")
	}()

	entry, err = s.entries.GetTimeEntry(ctx, entryID)
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	if err = checkAccess(principal, access.ApproveTimeEntry, principal.Owns(entry.EmployeeID)); err != nil {
		entry = TimeEntry{}
		return
	}

	if entry.Status != StatusApproved {
		entry.Status = StatusApproved
		entry.UpdatedAt = s.now()

		entry, err = s.entries.UpdateTimeEntry(ctx, entry)
		if err != nil {
			err = mapRepoError(err, "", "")
			return
		}
	}

	entry, _ = s.calendar.upsert(ctx, logger, entry, false)
	return
}

// Delete removes an entry. The calendar event is removed first; a failure
// there never blocks the deletion.
func (s *TimeEntryService) Delete(ctx context.Context, principal Principal, entryID string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Delete",
		"principal_id", principal.EmployeeID,
		"time_entry_id", entryID,
	)
	defer func() {
		s.metrics.ObserveTimeEntryOperation("delete", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete time entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "time entry deleted")
	}()

	var entry TimeEntry
	entry, err = s.entries.GetTimeEntry(ctx, entryID)
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	if err = checkAccess(principal, access.Op(access.ResourceTimeEntry, access.ActionDelete), principal.Owns(entry.EmployeeID)); err != nil {
		return
	}

	s.calendar.remove(ctx, logger, entry)

	if err = s.entries.DeleteTimeEntry(ctx, entryID); err != nil {
		err = mapRepoError(err, "", "")
	}
	return
}

// Get returns one entry to its owner or an elevated caller.
func (s *TimeEntryService) Get(ctx context.Context, principal Principal, entryID string) (TimeEntry, error) {
	if err := s.ready(); err != nil {
		return TimeEntry{}, err
	}

	entry, err := s.entries.GetTimeEntry(ctx, entryID)
	if err != nil {
		return TimeEntry{}, mapRepoError(err, "", "")
	}
	if err := checkAccess(principal, access.Op(access.ResourceTimeEntry, access.ActionRead), principal.Owns(entry.EmployeeID)); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}

// ListOwn returns the caller's entries ordered by date.
func (s *TimeEntryService) ListOwn(ctx context.Context, principal Principal, page Page) ([]TimeEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := checkAccess(principal, access.Op(access.ResourceTimeEntry, access.ActionRead), true); err != nil {
		return nil, err
	}
	return s.list(ctx, "ListOwn", principal, TimeEntryQuery{EmployeeID: principal.EmployeeID, Page: page})
}

// Filter lists entries across employees for elevated callers. Malformed
// dates are ignored.
func (s *TimeEntryService) Filter(ctx context.Context, principal Principal, filter TimeEntryFilter) ([]TimeEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := checkAccess(principal, access.ReadAllTimeEntry, false); err != nil {
		return nil, err
	}

	query := TimeEntryQuery{
		EmployeeID: strings.TrimSpace(filter.EmployeeID),
		StartDate:  parseOptionalDate(filter.StartDate),
		EndDate:    parseOptionalDate(filter.EndDate),
		Page:       filter.Page,
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query.Status = EntryStatus(strings.ToLower(status))
		if query.Status != StatusDraft && query.Status != StatusApproved {
			return nil, fieldError("status", "status must be draft or approved")
		}
	}
	return s.list(ctx, "Filter", principal, query)
}

// ListPending returns draft entries awaiting approval.
func (s *TimeEntryService) ListPending(ctx context.Context, principal Principal, page Page) ([]TimeEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := checkAccess(principal, access.ReadAllTimeEntry, false); err != nil {
		return nil, err
	}
	return s.list(ctx, "ListPending", principal, TimeEntryQuery{Status: StatusDraft, Page: page})
}

func (s *TimeEntryService) list(ctx context.Context, operation string, principal Principal, query TimeEntryQuery) (entries []TimeEntry, err error) {
	logger := s.loggerWith(ctx, operation, "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list time entries", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(entries)).InfoContext(ctx, "time entries listed")
	}()

	entries, err = s.entries.ListTimeEntries(ctx, query)
	if err != nil {
		err = mapRepoError(err, "", "")
	}
	return
}

// RecalculateRates re-resolves the rate of every stored entry. Running it
// twice in a row updates nothing the second time.
func (s *TimeEntryService) RecalculateRates(ctx context.Context, principal Principal) (result RecalculateResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "RecalculateRates", "principal_id", principal.EmployeeID)
	defer func() {
		s.metrics.ObserveTimeEntryOperation("recalculate", outcome(err))
		if err != nil {
			logger.ErrorContext(ctx, "failed to recalculate rates", "error", err, "error_kind", ErrorKind(err))
			return
		}
		s.metrics.ObserveRateRecalculation(result.Examined, result.Updated)
		logger.With("examined", result.Examined, "updated", result.Updated).InfoContext(ctx, "rates recalculated")
	}()

	if err = checkAccess(principal, access.RecalculateRates, false); err != nil {
		return
	}

	var entries []TimeEntry
	entries, err = s.entries.ListTimeEntries(ctx, TimeEntryQuery{})
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return
		}
		result.Examined++

		var rate Rate
		rate, err = s.resolver.Resolve(ctx, entry.EmployeeID, entry.MatterID)
		if err != nil {
			err = fmt.Errorf("resolve rate for entry %s: %w", entry.ID, err)
			return
		}
		if entry.RateID != nil && *entry.RateID == rate.ID {
			continue
		}

		rateID := rate.ID
		if err = s.entries.SetTimeEntryRate(ctx, entry.ID, &rateID, s.now()); err != nil {
			err = mapRepoError(err, "", "")
			return
		}
		result.Updated++
	}
	return
}

// validateInput checks field shapes, then that the referenced matter and
// activity type exist.
func (s *TimeEntryService) validateInput(ctx context.Context, input TimeEntryInput) (time.Time, error) {
	vErr := &ValidationError{}

	if input.Hours <= 0 {
		vErr.add("hours", "hours must be positive")
	}

	var date time.Time
	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	} else {
		parsed, err := parseDate(input.Date)
		if err != nil {
			vErr.add("date", "date must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}

	if strings.TrimSpace(input.MatterID) == "" {
		vErr.add("matter_id", "matter is required")
	}
	if strings.TrimSpace(input.ActivityTypeID) == "" {
		vErr.add("activity_type_id", "activity type is required")
	}

	if vErr.HasErrors() {
		return time.Time{}, vErr
	}

	if s.matters != nil {
		if _, err := s.matters.GetMatter(ctx, strings.TrimSpace(input.MatterID)); err != nil {
			if isNotFound(err) {
				return time.Time{}, fmt.Errorf("matter %s: %w", input.MatterID, ErrNotFound)
			}
			return time.Time{}, err
		}
	}
	if s.activities != nil {
		if _, err := s.activities.GetActivityType(ctx, strings.TrimSpace(input.ActivityTypeID)); err != nil {
			if isNotFound(err) {
				return time.Time{}, fmt.Errorf("activity type %s: %w", input.ActivityTypeID, ErrNotFound)
			}
			return time.Time{}, err
		}
	}

	return date, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

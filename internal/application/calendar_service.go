package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CalendarService links employees to an external calendar and mirrors
// their unsynced time entries into it.
type CalendarService struct {
	employees EmployeeRepository
	entries   TimeEntryRepository
	linker    CalendarLinker
	states    StateCodec
	bridge    *calendarBridge
	now       func() time.Time
	logger    *slog.Logger
}

// CalendarServiceDeps groups the collaborators of CalendarService.
type CalendarServiceDeps struct {
	Employees  EmployeeRepository
	Entries    TimeEntryRepository
	Matters    MatterRepository
	Activities ActivityTypeRepository
	Sync       CalendarSync
	// Linker is nil when calendar integration is disabled.
	Linker  CalendarLinker
	States  StateCodec
	Metrics Metrics
	Timeout time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewCalendarService constructs a calendar service.
func NewCalendarService(deps CalendarServiceDeps) *CalendarService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		employees: deps.Employees,
		entries:   deps.Entries,
		linker:    deps.Linker,
		states:    deps.States,
		bridge: &calendarBridge{
			sync:       deps.Sync,
			employees:  deps.Employees,
			matters:    deps.Matters,
			activities: deps.Activities,
			entries:    deps.Entries,
			metrics:    defaultMetrics(deps.Metrics),
			timeout:    deps.Timeout,
		},
		now:    now,
		logger: defaultLogger(deps.Logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// Enabled reports whether a calendar provider is configured.
func (s *CalendarService) Enabled() bool {
	return s != nil && s.linker != nil && s.states != nil
}

// AuthURL returns the provider consent URL for the caller.
func (s *CalendarService) AuthURL(ctx context.Context, principal Principal) (string, error) {
	if !s.Enabled() {
		return "", ErrCalendarUnavailable
	}
	if principal.EmployeeID == "" {
		return "", ErrInvalidCredentials
	}
	state, err := s.states.IssueState(principal.EmployeeID)
	if err != nil {
		return "", fmt.Errorf("issue oauth state: %w", err)
	}
	return s.linker.AuthURL(state), nil
}

// Connect completes the OAuth round trip. state identifies the employee that
// requested AuthURL; the exchanged credential is stored sealed.
func (s *CalendarService) Connect(ctx context.Context, state, code string) (employee Employee, err error) {
	if !s.Enabled() {
		err = ErrCalendarUnavailable
		return
	}
	if s.employees == nil {
		err = fmt.Errorf("employee repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Connect")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to connect calendar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID).InfoContext(ctx, "calendar connected")
	}()

	if strings.TrimSpace(code) == "" {
		err = fieldError("code", "authorization code is required")
		return
	}

	var employeeID string
	if employeeID, err = s.states.ParseState(state); err != nil {
		err = ErrInvalidCredentials
		return
	}

	if employee, err = s.employees.GetEmployee(ctx, employeeID); err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	var sealed []byte
	if sealed, err = s.linker.Exchange(ctx, strings.TrimSpace(code)); err != nil {
		err = fmt.Errorf("exchange authorization code: %w", err)
		return
	}

	employee.CalendarToken = sealed
	employee.UpdatedAt = s.now()
	employee, err = s.employees.UpdateEmployee(ctx, employee)
	err = mapRepoError(err, "", "")
	return
}

// Disconnect forgets the caller's calendar credential. Existing event
// handles on entries are kept.
func (s *CalendarService) Disconnect(ctx context.Context, principal Principal) error {
	if s == nil || s.employees == nil {
		return fmt.Errorf("employee repository not configured")
	}

	logger := s.loggerWith(ctx, "Disconnect", "principal_id", principal.EmployeeID)

	employee, err := s.employees.GetEmployee(ctx, principal.EmployeeID)
	if err != nil {
		err = mapRepoError(err, "", "")
		logger.ErrorContext(ctx, "failed to disconnect calendar", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !employee.CalendarConnected() && employee.CalendarID == "" {
		return nil
	}

	employee.CalendarToken = nil
	employee.CalendarID = ""
	employee.UpdatedAt = s.now()
	if _, err := s.employees.UpdateEmployee(ctx, employee); err != nil {
		err = mapRepoError(err, "", "")
		logger.ErrorContext(ctx, "failed to disconnect calendar", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "calendar disconnected")
	return nil
}

// SyncUnsynced pushes every entry of the caller that has no calendar event yet.
func (s *CalendarService) SyncUnsynced(ctx context.Context, principal Principal) (result SyncResult, err error) {
	if s == nil || s.employees == nil || s.entries == nil {
		err = fmt.Errorf("calendar service not configured")
		return
	}

	logger := s.loggerWith(ctx, "SyncUnsynced", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to sync entries", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("synced", result.Synced, "failed", result.Failed, "total", result.Total).InfoContext(ctx, "entries synced")
	}()

	var employee Employee
	if employee, err = s.employees.GetEmployee(ctx, principal.EmployeeID); err != nil {
		err = mapRepoError(err, "", "")
		return
	}
	if !employee.CalendarConnected() {
		err = fieldError("calendar", "calendar is not connected")
		return
	}

	result, err = s.syncEmployee(ctx, logger, employee.ID)
	return
}

// SweepAll runs SyncUnsynced for every employee with a linked calendar. A
// failed sweep is simply run again; entries already pushed carry a handle
// and are not pushed twice.
func (s *CalendarService) SweepAll(ctx context.Context) (result SyncResult, err error) {
	if s == nil || s.employees == nil || s.entries == nil {
		err = fmt.Errorf("calendar service not configured")
		return
	}

	logger := s.loggerWith(ctx, "SweepAll")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar sweep failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("synced", result.Synced, "failed", result.Failed, "total", result.Total).InfoContext(ctx, "calendar sweep finished")
	}()

	var employees []Employee
	if employees, err = s.employees.ListEmployees(ctx); err != nil {
		return
	}

	for _, employee := range employees {
		if !employee.CalendarConnected() {
			continue
		}
		var partial SyncResult
		if partial, err = s.syncEmployee(ctx, logger, employee.ID); err != nil {
			return
		}
		result.Synced += partial.Synced
		result.Failed += partial.Failed
		result.Total += partial.Total
	}
	return
}

func (s *CalendarService) syncEmployee(ctx context.Context, logger *slog.Logger, employeeID string) (SyncResult, error) {
	entries, err := s.entries.ListTimeEntries(ctx, TimeEntryQuery{EmployeeID: employeeID, Unsynced: true})
	if err != nil {
		return SyncResult{}, mapRepoError(err, "", "")
	}

	result := SyncResult{Total: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		switch _, status := s.bridge.upsert(ctx, logger, entry, true); status {
		case syncDone:
			result.Synced++
		case syncFailed:
			result.Failed++
		}
	}
	return result, nil
}

package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/persistence"
)

// EmployeeRepository captures the persistence operations needed for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// ClientRepository captures the persistence operations needed for clients.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	UpdateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// ContractRepository captures the persistence operations needed for contracts.
type ContractRepository interface {
	CreateContract(ctx context.Context, contract Contract) (Contract, error)
	UpdateContract(ctx context.Context, contract Contract) (Contract, error)
	GetContract(ctx context.Context, id string) (Contract, error)
	ListContracts(ctx context.Context) ([]Contract, error)
	CountContractsForClient(ctx context.Context, clientID string) (int, error)
	DeleteContract(ctx context.Context, id string) error
}

// MatterRepository captures the persistence operations needed for matters.
type MatterRepository interface {
	CreateMatter(ctx context.Context, matter Matter) (Matter, error)
	UpdateMatter(ctx context.Context, matter Matter) (Matter, error)
	GetMatter(ctx context.Context, id string) (Matter, error)
	ListMatters(ctx context.Context) ([]Matter, error)
	DeleteMatter(ctx context.Context, id string) error
}

// ActivityTypeRepository captures the persistence operations needed for activity types.
type ActivityTypeRepository interface {
	CreateActivityType(ctx context.Context, activityType ActivityType) (ActivityType, error)
	UpdateActivityType(ctx context.Context, activityType ActivityType) (ActivityType, error)
	GetActivityType(ctx context.Context, id string) (ActivityType, error)
	ListActivityTypes(ctx context.Context) ([]ActivityType, error)
	DeleteActivityType(ctx context.Context, id string) error
}

// RateRepository captures rate storage and the lookups used by rate resolution.
type RateRepository interface {
	CreateRate(ctx context.Context, rate Rate) (Rate, error)
	UpdateRate(ctx context.Context, rate Rate) (Rate, error)
	GetRate(ctx context.Context, id string) (Rate, error)
	ListRates(ctx context.Context) ([]Rate, error)
	DeleteRate(ctx context.Context, id string) error
	FindContractRate(ctx context.Context, contractID string) (Rate, error)
	FindEmployeeRate(ctx context.Context, employeeID string) (Rate, error)
	GetOrCreateDefaultRate(ctx context.Context, candidate Rate) (Rate, error)
}

// TimeEntryRepository captures time entry storage.
type TimeEntryRepository interface {
	CreateTimeEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	GetTimeEntry(ctx context.Context, id string) (TimeEntry, error)
	ListTimeEntries(ctx context.Context, query TimeEntryQuery) ([]TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	SetTimeEntryRate(ctx context.Context, id string, rateID *string, updatedAt time.Time) error
	SetCalendarEventID(ctx context.Context, id string, eventID *string) error
}

// ReportSource returns approved entries joined with catalog names.
type ReportSource interface {
	Report(ctx context.Context, query ReportQuery) ([]ReportRow, error)
}

// mapRepoError converts storage errors into service errors. duplicate and
// referenced describe the conflict reported for the matching storage error.
func mapRepoError(err error, duplicate, referenced string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		if duplicate == "" {
			duplicate = "already exists"
		}
		return conflictf("%s", duplicate)
	case errors.Is(err, persistence.ErrReferenced):
		if referenced == "" {
			referenced = "still referenced"
		}
		return conflictf("%s", referenced)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
}

// parseOptionalDate returns nil for empty or malformed input.
func parseOptionalDate(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := parseDate(value)
	if err != nil {
		return nil
	}
	return &parsed
}

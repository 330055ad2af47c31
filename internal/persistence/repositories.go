package persistence

import (
	"context"
	"time"
)

// EmployeeRepository exposes CRUD operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// ClientRepository exposes CRUD operations for clients. DeleteClient returns
// ErrReferenced while contracts exist.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) error
	UpdateClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, id string) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// ContractRepository exposes CRUD operations for contracts. Deleting a
// contract removes its matters.
type ContractRepository interface {
	CreateContract(ctx context.Context, contract Contract) error
	UpdateContract(ctx context.Context, contract Contract) error
	GetContract(ctx context.Context, id string) (Contract, error)
	ListContracts(ctx context.Context) ([]Contract, error)
	CountContractsForClient(ctx context.Context, clientID string) (int, error)
	DeleteContract(ctx context.Context, id string) error
}

// MatterRepository exposes CRUD operations for matters.
type MatterRepository interface {
	CreateMatter(ctx context.Context, matter Matter) error
	UpdateMatter(ctx context.Context, matter Matter) error
	GetMatter(ctx context.Context, id string) (Matter, error)
	ListMatters(ctx context.Context) ([]Matter, error)
	DeleteMatter(ctx context.Context, id string) error
}

// ActivityTypeRepository exposes CRUD operations for activity types.
type ActivityTypeRepository interface {
	CreateActivityType(ctx context.Context, activityType ActivityType) error
	UpdateActivityType(ctx context.Context, activityType ActivityType) error
	GetActivityType(ctx context.Context, id string) (ActivityType, error)
	ListActivityTypes(ctx context.Context) ([]ActivityType, error)
	DeleteActivityType(ctx context.Context, id string) error
}

// RateRepository stores rates and answers the lookups used by rate resolution.
type RateRepository interface {
	CreateRate(ctx context.Context, rate Rate) error
	UpdateRate(ctx context.Context, rate Rate) error
	GetRate(ctx context.Context, id string) (Rate, error)
	ListRates(ctx context.Context) ([]Rate, error)
	DeleteRate(ctx context.Context, id string) error

	// FindContractRate returns the rate with the given contract and no employee.
	FindContractRate(ctx context.Context, contractID string) (Rate, error)
	// FindEmployeeRate returns the rate with the given employee and no contract.
	FindEmployeeRate(ctx context.Context, employeeID string) (Rate, error)
	// GetOrCreateDefaultRate inserts candidate as the default rate unless one
	// already exists and returns the stored default either way.
	GetOrCreateDefaultRate(ctx context.Context, candidate Rate) (Rate, error)
}

// TimeEntryFilter narrows time entry listings. Zero values mean "any".
type TimeEntryFilter struct {
	EmployeeID string
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
	Unsynced   bool
	Limit      int
	Offset     int
}

// ReportFilter narrows report rows. Only approved entries are ever returned.
type ReportFilter struct {
	EmployeeID string
	MatterID   string
	ContractID string
	ClientID   string
	StartDate  *time.Time
	EndDate    *time.Time
}

// TimeEntryRepository stores time entries and serves the billing report.
type TimeEntryRepository interface {
	CreateTimeEntry(ctx context.Context, entry TimeEntry) error
	UpdateTimeEntry(ctx context.Context, entry TimeEntry) error
	GetTimeEntry(ctx context.Context, id string) (TimeEntry, error)
	ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	SetTimeEntryRate(ctx context.Context, id string, rateID *string, updatedAt time.Time) error
	SetCalendarEventID(ctx context.Context, id string, eventID *string) error
	Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

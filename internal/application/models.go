package application

import (
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// Principal represents the authenticated employee invoking a service method.
type Principal struct {
	EmployeeID string
	Role       access.Role
}

// Owns reports whether the principal is the given employee.
func (p Principal) Owns(employeeID string) bool {
	return p.EmployeeID != "" && p.EmployeeID == employeeID
}

// Employee is a staff account. PasswordHash and CalendarToken never leave the service layer.
type Employee struct {
	ID            string
	Name          string
	Email         string
	Role          access.Role
	PasswordHash  string
	CalendarToken []byte
	CalendarID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CalendarConnected reports whether the employee linked an external calendar.
func (e Employee) CalendarConnected() bool {
	return len(e.CalendarToken) > 0
}

// ClientType distinguishes legal entities from natural persons.
type ClientType string

const (
	ClientTypeLegal    ClientType = "legal"
	ClientTypePhysical ClientType = "physical"
)

// Valid reports whether the client type is known.
func (t ClientType) Valid() bool {
	return t == ClientTypeLegal || t == ClientTypePhysical
}

// Client owns contracts.
type Client struct {
	ID        string
	Name      string
	Type      ClientType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contract belongs to a client.
type Contract struct {
	ID        string
	ClientID  string
	Number    string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Matter is a legal case billed under a contract.
type Matter struct {
	ID          string
	ContractID  string
	Code        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActivityType tags the kind of work performed.
type ActivityType struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RateScope names which of the three rate shapes a rate has.
type RateScope string

const (
	RateScopeContract RateScope = "contract"
	RateScopeEmployee RateScope = "employee"
	RateScopeDefault  RateScope = "default"
	RateScopeInvalid  RateScope = "invalid"
)

// Rate is an hourly billing rate.
type Rate struct {
	ID         string
	Value      float64
	EmployeeID *string
	ContractID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Scope classifies the rate by which references are set.
func (r Rate) Scope() RateScope {
	switch {
	case r.ContractID != nil && r.EmployeeID != nil:
		return RateScopeInvalid
	case r.ContractID != nil:
		return RateScopeContract
	case r.EmployeeID != nil:
		return RateScopeEmployee
	default:
		return RateScopeDefault
	}
}

// EntryStatus is the billing state of a time entry.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "draft"
	StatusApproved EntryStatus = "approved"
)

// TimeEntry is a billable record of hours worked by one employee on one matter.
type TimeEntry struct {
	ID              string
	EmployeeID      string
	MatterID        string
	ActivityTypeID  string
	RateID          *string
	Hours           float64
	Description     string
	Date            time.Time
	Status          EntryStatus
	CalendarEventID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasCalendarEvent reports whether the entry is linked to an external event.
func (e TimeEntry) HasCalendarEvent() bool {
	return e.CalendarEventID != nil && *e.CalendarEventID != ""
}

// TimeEntryInput captures caller provided time entry fields. Date is a
// YYYY-MM-DD string.
type TimeEntryInput struct {
	MatterID       string
	ActivityTypeID string
	Hours          float64
	Description    string
	Date           string
}

// CreateTimeEntryParams wraps the data required to create a time entry.
type CreateTimeEntryParams struct {
	Principal Principal
	Input     TimeEntryInput
}

// UpdateTimeEntryParams wraps the data required to update a time entry.
type UpdateTimeEntryParams struct {
	Principal Principal
	EntryID   string
	Input     TimeEntryInput
}

// Page bounds a listing. A zero Limit returns everything.
type Page struct {
	Limit  int
	Offset int
}

// TimeEntryFilter narrows the elevated time entry listing. Dates are
// YYYY-MM-DD strings; malformed dates are ignored.
type TimeEntryFilter struct {
	EmployeeID string
	Status     string
	StartDate  string
	EndDate    string
	Page       Page
}

// TimeEntryQuery is the repository level form of a time entry listing.
type TimeEntryQuery struct {
	EmployeeID string
	Status     EntryStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Unsynced   bool
	Page       Page
}

// RecalculateResult reports the outcome of a bulk rate recalculation.
type RecalculateResult struct {
	Examined int
	Updated  int
}

// ReportFilter narrows a billing report. Dates are YYYY-MM-DD strings;
// malformed dates are ignored.
type ReportFilter struct {
	EmployeeID string
	MatterID   string
	ContractID string
	ClientID   string
	StartDate  string
	EndDate    string
}

// ReportQuery is the repository level form of a report request.
type ReportQuery struct {
	EmployeeID string
	MatterID   string
	ContractID string
	ClientID   string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ReportRow is one approved entry enriched with catalog names.
type ReportRow struct {
	EntryID          string
	Date             time.Time
	EmployeeID       string
	EmployeeName     string
	ClientName       string
	ContractNumber   string
	MatterCode       string
	MatterName       string
	ActivityTypeName string
	Hours            float64
	RateValue        *float64
	Amount           float64
	Status           EntryStatus
	Description      string
}

// SyncResult reports a calendar sync sweep.
type SyncResult struct {
	Synced int
	Failed int
	Total  int
}

package persistence

import "time"

// Employee represents a staff account together with its calendar link state.
type Employee struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          string
	CalendarToken []byte
	CalendarID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Client is a legal entity or natural person owning contracts.
type Client struct {
	ID        string
	Name      string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contract belongs to a client and groups matters.
type Contract struct {
	ID        string
	ClientID  string
	Number    string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Matter is the unit time is billed against.
type Matter struct {
	ID          string
	ContractID  string
	Code        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActivityType tags the kind of work a time entry represents.
type ActivityType struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rate is an hourly billing rate scoped to a contract, an employee, or neither.
type Rate struct {
	ID         string
	Value      float64
	EmployeeID *string
	ContractID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TimeEntry records hours worked by one employee on one matter.
type TimeEntry struct {
	ID              string
	EmployeeID      string
	MatterID        string
	ActivityTypeID  string
	RateID          *string
	Hours           float64
	Description     string
	Date            time.Time
	Status          string
	CalendarEventID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReportRow is an approved time entry joined with its catalog names.
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
	Status           string
	Description      string
}

package http

import (
	"github.com/makarovada/legal-time/internal/application"
)

type employeeDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	CalendarConnected bool   `json:"calendar_connected"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func toEmployeeDTO(e application.Employee) employeeDTO {
	return employeeDTO{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Role:              string(e.Role),
		CalendarConnected: e.CalendarConnected(),
		CreatedAt:         formatTimestamp(e.CreatedAt),
		UpdatedAt:         formatTimestamp(e.UpdatedAt),
	}
}

type clientDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toClientDTO(c application.Client) clientDTO {
	return clientDTO{ID: c.ID, Name: c.Name, Type: string(c.Type), CreatedAt: formatTimestamp(c.CreatedAt), UpdatedAt: formatTimestamp(c.UpdatedAt)}
}

type contractDTO struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Number    string `json:"number"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toContractDTO(c application.Contract) contractDTO {
	return contractDTO{
		ID:        c.ID,
		ClientID:  c.ClientID,
		Number:    c.Number,
		Date:      c.Date.UTC().Format(dateLayout),
		CreatedAt: formatTimestamp(c.CreatedAt),
		UpdatedAt: formatTimestamp(c.UpdatedAt),
	}
}

type matterDTO struct {
	ID          string `json:"id"`
	ContractID  string `json:"contract_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toMatterDTO(m application.Matter) matterDTO {
	return matterDTO{
		ID:          m.ID,
		ContractID:  m.ContractID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   formatTimestamp(m.CreatedAt),
		UpdatedAt:   formatTimestamp(m.UpdatedAt),
	}
}

type activityTypeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toActivityTypeDTO(a application.ActivityType) activityTypeDTO {
	return activityTypeDTO{ID: a.ID, Name: a.Name, CreatedAt: formatTimestamp(a.CreatedAt), UpdatedAt: formatTimestamp(a.UpdatedAt)}
}

type rateDTO struct {
	ID         string  `json:"id"`
	Value      float64 `json:"value"`
	EmployeeID *string `json:"employee_id"`
	ContractID *string `json:"contract_id"`
	Scope      string  `json:"scope"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toRateDTO(r application.Rate) rateDTO {
	return rateDTO{
		ID:         r.ID,
		Value:      r.Value,
		EmployeeID: r.EmployeeID,
		ContractID: r.ContractID,
		Scope:      string(r.Scope()),
		CreatedAt:  formatTimestamp(r.CreatedAt),
		UpdatedAt:  formatTimestamp(r.UpdatedAt),
	}
}

type timeEntryDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	MatterID        string  `json:"matter_id"`
	ActivityTypeID  string  `json:"activity_type_id"`
	RateID          *string `json:"rate_id"`
	Hours           float64 `json:"hours"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	Status          string  `json:"status"`
	CalendarEventID *string `json:"calendar_event_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toTimeEntryDTO(e application.TimeEntry) timeEntryDTO {
	return timeEntryDTO{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		MatterID:        e.MatterID,
		ActivityTypeID:  e.ActivityTypeID,
		RateID:          e.RateID,
		Hours:           e.Hours,
		Description:     e.Description,
		Date:            e.Date.UTC().Format(dateLayout),
		Status:          string(e.Status),
		CalendarEventID: e.CalendarEventID,
		CreatedAt:       formatTimestamp(e.CreatedAt),
		UpdatedAt:       formatTimestamp(e.UpdatedAt),
	}
}

type reportRowDTO struct {
	EntryID          string   `json:"entry_id"`
	Date             string   `json:"date"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     string   `json:"employee_name"`
	ClientName       string   `json:"client_name"`
	ContractNumber   string   `json:"contract_number"`
	MatterCode       string   `json:"matter_code"`
	MatterName       string   `json:"matter_name"`
	ActivityTypeName string   `json:"activity_type_name"`
	Hours            float64  `json:"hours"`
	RateValue        *float64 `json:"rate_value"`
	Amount           float64  `json:"amount"`
	Status           string   `json:"status"`
	Description      string   `json:"description"`
}

func toReportRowDTO(r application.ReportRow) reportRowDTO {
	return reportRowDTO{
		EntryID:          r.EntryID,
		Date:             r.Date.UTC().Format(dateLayout),
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		ClientName:       r.ClientName,
		ContractNumber:   r.ContractNumber,
		MatterCode:       r.MatterCode,
		MatterName:       r.MatterName,
		ActivityTypeName: r.ActivityTypeName,
		Hours:            r.Hours,
		RateValue:        r.RateValue,
		Amount:           r.Amount,
		Status:           string(r.Status),
		Description:      r.Description,
	}
}

// mapAll converts a slice, always returning a non-nil slice so lists encode as [].
func mapAll[From, To any](items []From, convert func(From) To) []To {
	out := make([]To, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}

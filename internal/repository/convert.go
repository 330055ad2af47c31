package repository

import (
	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/persistence"
)

func convertAll[From, To any](models []From, convert func(From) To) []To {
	if len(models) == 0 {
		return nil
	}
	out := make([]To, 0, len(models))
	for _, model := range models {
		out = append(out, convert(model))
	}
	return out
}

func toPersistenceEmployee(e application.Employee) persistence.Employee {
	return persistence.Employee{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		PasswordHash:  e.PasswordHash,
		Role:          string(e.Role),
		CalendarToken: e.CalendarToken,
		CalendarID:    e.CalendarID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toApplicationEmployee(e persistence.Employee) application.Employee {
	return application.Employee{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		PasswordHash:  e.PasswordHash,
		Role:          access.Role(e.Role),
		CalendarToken: e.CalendarToken,
		CalendarID:    e.CalendarID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toPersistenceClient(c application.Client) persistence.Client {
	return persistence.Client{ID: c.ID, Name: c.Name, Type: string(c.Type), CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toApplicationClient(c persistence.Client) application.Client {
	return application.Client{ID: c.ID, Name: c.Name, Type: application.ClientType(c.Type), CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toPersistenceTimeEntry(e application.TimeEntry) persistence.TimeEntry {
	return persistence.TimeEntry{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		MatterID:        e.MatterID,
		ActivityTypeID:  e.ActivityTypeID,
		RateID:          e.RateID,
		Hours:           e.Hours,
		Description:     e.Description,
		Date:            e.Date,
		Status:          string(e.Status),
		CalendarEventID: e.CalendarEventID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toApplicationTimeEntry(e persistence.TimeEntry) application.TimeEntry {
	return application.TimeEntry{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		MatterID:        e.MatterID,
		ActivityTypeID:  e.ActivityTypeID,
		RateID:          e.RateID,
		Hours:           e.Hours,
		Description:     e.Description,
		Date:            e.Date,
		Status:          application.EntryStatus(e.Status),
		CalendarEventID: e.CalendarEventID,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toApplicationReportRow(r persistence.ReportRow) application.ReportRow {
	return application.ReportRow{
		EntryID:          r.EntryID,
		Date:             r.Date,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		ClientName:       r.ClientName,
		ContractNumber:   r.ContractNumber,
		MatterCode:       r.MatterCode,
		MatterName:       r.MatterName,
		ActivityTypeName: r.ActivityTypeName,
		Hours:            r.Hours,
		RateValue:        r.RateValue,
		Status:           application.EntryStatus(r.Status),
		Description:      r.Description,
	}
}

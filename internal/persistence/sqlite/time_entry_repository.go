package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/persistence"
)

const timeEntryColumns = `id, employee_id, matter_id, activity_type_id, rate_id, hours, description, date, status, calendar_event_id, created_at, updated_at`

// CreateTimeEntry stores a new time entry.
func (s *Storage) CreateTimeEntry(ctx context.Context, entry persistence.TimeEntry) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO time_entries (`+timeEntryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.EmployeeID,
		entry.MatterID,
		entry.ActivityTypeID,
		nullableString(entry.RateID),
		entry.Hours,
		entry.Description,
		formatDate(entry.Date),
		entry.Status,
		nullableString(entry.CalendarEventID),
		formatTimestamp(entry.CreatedAt),
		formatTimestamp(entry.UpdatedAt),
	)
	return mapError(err)
}

// UpdateTimeEntry overwrites the mutable columns of a time entry. The owner
// column is never written.
func (s *Storage) UpdateTimeEntry(ctx context.Context, entry persistence.TimeEntry) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE time_entries
		SET matter_id = ?, activity_type_id = ?, rate_id = ?, hours = ?, description = ?,
		    date = ?, status = ?, calendar_event_id = ?, updated_at = ?
		WHERE id = ?`,
		entry.MatterID,
		entry.ActivityTypeID,
		nullableString(entry.RateID),
		entry.Hours,
		entry.Description,
		formatDate(entry.Date),
		entry.Status,
		nullableString(entry.CalendarEventID),
		formatTimestamp(entry.UpdatedAt),
		entry.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetTimeEntry retrieves a time entry by ID.
func (s *Storage) GetTimeEntry(ctx context.Context, id string) (persistence.TimeEntry, error) {
	return scanTimeEntry(s.pool.DB().QueryRowContext(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id))
}

// ListTimeEntries returns entries matching filter ordered by date then
// insertion order.
func (s *Storage) ListTimeEntries(ctx context.Context, filter persistence.TimeEntryFilter) ([]persistence.TimeEntry, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}
	if filter.Unsynced {
		conditions = append(conditions, "(calendar_event_id IS NULL OR calendar_event_id = '')")
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []persistence.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, mapError(rows.Err())
}

// DeleteTimeEntry removes a time entry.
func (s *Storage) DeleteTimeEntry(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// SetTimeEntryRate changes only the rate reference of an entry.
func (s *Storage) SetTimeEntryRate(ctx context.Context, id string, rateID *string, updatedAt time.Time) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE time_entries SET rate_id = ?, updated_at = ? WHERE id = ?`,
		nullableString(rateID), formatTimestamp(updatedAt), id,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// SetCalendarEventID records the external calendar handle of an entry.
func (s *Storage) SetCalendarEventID(ctx context.Context, id string, eventID *string) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE time_entries SET calendar_event_id = ? WHERE id = ?`,
		nullableString(eventID), id,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// Report returns approved entries joined with their catalog names.
func (s *Storage) Report(ctx context.Context, filter persistence.ReportFilter) ([]persistence.ReportRow, error) {
	conditions := []string{"te.status = 'approved'"}
	var args []any

	if filter.EmployeeID != "" {
		conditions = append(conditions, "te.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.MatterID != "" {
		conditions = append(conditions, "te.matter_id = ?")
		args = append(args, filter.MatterID)
	}
	if filter.ContractID != "" {
		conditions = append(conditions, "m.contract_id = ?")
		args = append(args, filter.ContractID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, "c.client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "te.date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "te.date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}

	query := `
		SELECT te.id, te.date, e.id, e.name, cl.name, c.number, m.code, m.name, at.name,
		       te.hours, r.value, te.status, te.description
		FROM time_entries te
		JOIN employees e ON e.id = te.employee_id
		JOIN matters m ON m.id = te.matter_id
		JOIN contracts c ON c.id = m.contract_id
		JOIN clients cl ON cl.id = c.client_id
		JOIN activity_types at ON at.id = te.activity_type_id
		LEFT JOIN rates r ON r.id = te.rate_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY te.date ASC, te.created_at ASC, te.rowid ASC`

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var report []persistence.ReportRow
	for rows.Next() {
		var (
			row       persistence.ReportRow
			date      string
			rateValue sql.NullFloat64
		)
		if err := rows.Scan(
			&row.EntryID, &date, &row.EmployeeID, &row.EmployeeName, &row.ClientName, &row.ContractNumber,
			&row.MatterCode, &row.MatterName, &row.ActivityTypeName, &row.Hours, &rateValue,
			&row.Status, &row.Description,
		); err != nil {
			return nil, mapError(err)
		}
		if row.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if rateValue.Valid {
			value := rateValue.Float64
			row.RateValue = &value
		}
		report = append(report, row)
	}
	return report, mapError(rows.Err())
}

func scanTimeEntry(row rowScanner) (persistence.TimeEntry, error) {
	var (
		entry                      persistence.TimeEntry
		rateID, calendarEventID    sql.NullString
		date, createdAt, updatedAt string
	)
	err := row.Scan(
		&entry.ID,
		&entry.EmployeeID,
		&entry.MatterID,
		&entry.ActivityTypeID,
		&rateID,
		&entry.Hours,
		&entry.Description,
		&date,
		&entry.Status,
		&calendarEventID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.TimeEntry{}, mapError(err)
	}
	entry.RateID = stringPtr(rateID)
	entry.CalendarEventID = stringPtr(calendarEventID)

	if entry.Date, err = parseDate(date); err != nil {
		return persistence.TimeEntry{}, err
	}
	if entry.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.TimeEntry{}, err
	}
	if entry.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.TimeEntry{}, err
	}
	return entry, nil
}

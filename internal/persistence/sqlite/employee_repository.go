package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/makarovada/legal-time/internal/persistence"
)

const employeeColumns = `id, name, email, password_hash, role, calendar_token, calendar_id, created_at, updated_at`

// CreateEmployee stores a new employee.
func (s *Storage) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.Name,
		normalizeEmail(employee.Email),
		employee.PasswordHash,
		employee.Role,
		nullableBytes(employee.CalendarToken),
		employee.CalendarID,
		formatTimestamp(employee.CreatedAt),
		formatTimestamp(employee.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateEmployee overwrites every mutable column of an employee.
func (s *Storage) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE employees
		SET name = ?, email = ?, password_hash = ?, role = ?, calendar_token = ?, calendar_id = ?, updated_at = ?
		WHERE id = ?`,
		employee.Name,
		normalizeEmail(employee.Email),
		employee.PasswordHash,
		employee.Role,
		nullableBytes(employee.CalendarToken),
		employee.CalendarID,
		formatTimestamp(employee.UpdatedAt),
		employee.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetEmployee retrieves an employee by ID.
func (s *Storage) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	row := s.pool.DB().QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

// GetEmployeeByEmail retrieves an employee by case-insensitive email.
func (s *Storage) GetEmployeeByEmail(ctx context.Context, email string) (persistence.Employee, error) {
	row := s.pool.DB().QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = ?`, normalizeEmail(email))
	return scanEmployee(row)
}

// ListEmployees returns employees ordered by name then ID.
func (s *Storage) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return employees, nil
}

// DeleteEmployee removes an employee. Employees that still own time entries
// cannot be removed.
func (s *Storage) DeleteEmployee(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var (
		employee             persistence.Employee
		createdAt, updatedAt string
	)
	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.PasswordHash,
		&employee.Role,
		&employee.CalendarToken,
		&employee.CalendarID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Employee{}, mapError(err)
	}
	if employee.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Employee{}, err
	}
	return employee, nil
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(result rowsAffecter) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/makarovada/legal-time/internal/persistence"
)

const rateColumns = `id, value, employee_id, contract_id, created_at, updated_at`

// CreateRate stores a new rate. A second rate for the same contract, the same
// employee, or a second default yields persistence.ErrDuplicate.
func (s *Storage) CreateRate(ctx context.Context, rate persistence.Rate) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO rates (`+rateColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		rate.ID, rate.Value, nullableString(rate.EmployeeID), nullableString(rate.ContractID),
		formatTimestamp(rate.CreatedAt), formatTimestamp(rate.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRate updates the value and scope of a rate.
func (s *Storage) UpdateRate(ctx context.Context, rate persistence.Rate) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE rates SET value = ?, employee_id = ?, contract_id = ?, updated_at = ? WHERE id = ?`,
		rate.Value, nullableString(rate.EmployeeID), nullableString(rate.ContractID),
		formatTimestamp(rate.UpdatedAt), rate.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetRate retrieves a rate by ID.
func (s *Storage) GetRate(ctx context.Context, id string) (persistence.Rate, error) {
	return scanRate(s.pool.DB().QueryRowContext(ctx, `SELECT `+rateColumns+` FROM rates WHERE id = ?`, id))
}

// ListRates returns rates in insertion order.
func (s *Storage) ListRates(ctx context.Context) ([]persistence.Rate, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT `+rateColumns+` FROM rates ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rates []persistence.Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, mapError(rows.Err())
}

// DeleteRate removes a rate that no time entry references.
func (s *Storage) DeleteRate(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM rates WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// FindContractRate returns the contract-scoped rate of a contract.
func (s *Storage) FindContractRate(ctx context.Context, contractID string) (persistence.Rate, error) {
	return scanRate(s.pool.DB().QueryRowContext(ctx, `
		SELECT `+rateColumns+` FROM rates
		WHERE contract_id = ? AND employee_id IS NULL
		LIMIT 1`, contractID))
}

// FindEmployeeRate returns the employee-scoped rate of an employee.
func (s *Storage) FindEmployeeRate(ctx context.Context, employeeID string) (persistence.Rate, error) {
	return scanRate(s.pool.DB().QueryRowContext(ctx, `
		SELECT `+rateColumns+` FROM rates
		WHERE employee_id = ? AND contract_id IS NULL
		LIMIT 1`, employeeID))
}

// GetOrCreateDefaultRate inserts candidate as the default rate when none
// exists. The partial unique index idx_rates_default turns a concurrent second
// insert into a no-op, so every caller reads back the same row.
func (s *Storage) GetOrCreateDefaultRate(ctx context.Context, candidate persistence.Rate) (persistence.Rate, error) {
	var rate persistence.Rate
	err := withRetry(ctx, s.retry, func() error {
		_, err := s.pool.DB().ExecContext(ctx, `
			INSERT INTO rates (`+rateColumns+`) VALUES (?, ?, NULL, NULL, ?, ?)
			ON CONFLICT DO NOTHING`,
			candidate.ID, candidate.Value,
			formatTimestamp(candidate.CreatedAt), formatTimestamp(candidate.UpdatedAt),
		)
		if err != nil {
			return err
		}

		rate, err = scanRate(s.pool.DB().QueryRowContext(ctx, `
			SELECT `+rateColumns+` FROM rates
			WHERE employee_id IS NULL AND contract_id IS NULL
			LIMIT 1`))
		return err
	})
	if err != nil {
		return persistence.Rate{}, mapError(err)
	}
	return rate, nil
}

func scanRate(row rowScanner) (persistence.Rate, error) {
	var (
		rate                   persistence.Rate
		employeeID, contractID sql.NullString
		createdAt, updatedAt   string
	)
	if err := row.Scan(&rate.ID, &rate.Value, &employeeID, &contractID, &createdAt, &updatedAt); err != nil {
		return persistence.Rate{}, mapError(err)
	}
	rate.EmployeeID = stringPtr(employeeID)
	rate.ContractID = stringPtr(contractID)

	var err error
	if rate.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Rate{}, err
	}
	if rate.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Rate{}, err
	}
	return rate, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/makarovada/legal-time/internal/persistence"
)

// CreateContract stores a new contract.
func (s *Storage) CreateContract(ctx context.Context, contract persistence.Contract) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO contracts (id, client_id, number, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		contract.ID, contract.ClientID, contract.Number, formatDate(contract.Date),
		formatTimestamp(contract.CreatedAt), formatTimestamp(contract.UpdatedAt),
	)
	return mapError(err)
}

// UpdateContract updates a contract.
func (s *Storage) UpdateContract(ctx context.Context, contract persistence.Contract) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE contracts SET client_id = ?, number = ?, date = ?, updated_at = ? WHERE id = ?`,
		contract.ClientID, contract.Number, formatDate(contract.Date), formatTimestamp(contract.UpdatedAt), contract.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetContract retrieves a contract by ID.
func (s *Storage) GetContract(ctx context.Context, id string) (persistence.Contract, error) {
	row := s.pool.DB().QueryRowContext(ctx, `
		SELECT id, client_id, number, date, created_at, updated_at FROM contracts WHERE id = ?`, id)
	return scanContract(row)
}

// ListContracts returns contracts ordered by date then number.
func (s *Storage) ListContracts(ctx context.Context) ([]persistence.Contract, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, client_id, number, date, created_at, updated_at
		FROM contracts ORDER BY date ASC, number ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var contracts []persistence.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return contracts, mapError(rows.Err())
}

// CountContractsForClient returns how many contracts a client owns.
func (s *Storage) CountContractsForClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := s.pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE client_id = ?`, clientID).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// DeleteContract removes a contract together with its matters. It fails with
// persistence.ErrReferenced when any of those matters has time entries.
func (s *Storage) DeleteContract(ctx context.Context, id string) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var entries int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM time_entries te
			JOIN matters m ON m.id = te.matter_id
			WHERE m.contract_id = ?`, id).Scan(&entries)
		if err != nil {
			return mapError(err)
		}
		if entries > 0 {
			return fmt.Errorf("%w: contract %s has %d time entries", persistence.ErrReferenced, id, entries)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
		if err != nil {
			return mapError(err)
		}
		return requireAffected(result)
	})
}

func scanContract(row rowScanner) (persistence.Contract, error) {
	var (
		contract                   persistence.Contract
		date, createdAt, updatedAt string
	)
	if err := row.Scan(&contract.ID, &contract.ClientID, &contract.Number, &date, &createdAt, &updatedAt); err != nil {
		return persistence.Contract{}, mapError(err)
	}
	var err error
	if contract.Date, err = parseDate(date); err != nil {
		return persistence.Contract{}, err
	}
	if contract.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Contract{}, err
	}
	if contract.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Contract{}, err
	}
	return contract, nil
}

package sqlite

import (
	"context"

	"github.com/makarovada/legal-time/internal/persistence"
)

// CreateMatter stores a new matter.
func (s *Storage) CreateMatter(ctx context.Context, matter persistence.Matter) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO matters (id, contract_id, code, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		matter.ID, matter.ContractID, matter.Code, matter.Name, matter.Description,
		formatTimestamp(matter.CreatedAt), formatTimestamp(matter.UpdatedAt),
	)
	return mapError(err)
}

// UpdateMatter updates a matter.
func (s *Storage) UpdateMatter(ctx context.Context, matter persistence.Matter) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE matters SET contract_id = ?, code = ?, name = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		matter.ContractID, matter.Code, matter.Name, matter.Description, formatTimestamp(matter.UpdatedAt), matter.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetMatter retrieves a matter by ID.
func (s *Storage) GetMatter(ctx context.Context, id string) (persistence.Matter, error) {
	row := s.pool.DB().QueryRowContext(ctx, `
		SELECT id, contract_id, code, name, description, created_at, updated_at
		FROM matters WHERE id = ?`, id)
	return scanMatter(row)
}

// ListMatters returns matters ordered by code.
func (s *Storage) ListMatters(ctx context.Context) ([]persistence.Matter, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, contract_id, code, name, description, created_at, updated_at
		FROM matters ORDER BY code ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var matters []persistence.Matter
	for rows.Next() {
		matter, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		matters = append(matters, matter)
	}
	return matters, mapError(rows.Err())
}

// DeleteMatter removes a matter that no time entry references.
func (s *Storage) DeleteMatter(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM matters WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanMatter(row rowScanner) (persistence.Matter, error) {
	var (
		matter               persistence.Matter
		createdAt, updatedAt string
	)
	if err := row.Scan(&matter.ID, &matter.ContractID, &matter.Code, &matter.Name, &matter.Description, &createdAt, &updatedAt); err != nil {
		return persistence.Matter{}, mapError(err)
	}
	var err error
	if matter.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Matter{}, err
	}
	if matter.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Matter{}, err
	}
	return matter, nil
}

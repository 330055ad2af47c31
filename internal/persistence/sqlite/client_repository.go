package sqlite

import (
	"context"

	"github.com/makarovada/legal-time/internal/persistence"
)

// CreateClient stores a new client.
func (s *Storage) CreateClient(ctx context.Context, client persistence.Client) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO clients (id, name, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		client.ID, client.Name, client.Type,
		formatTimestamp(client.CreatedAt), formatTimestamp(client.UpdatedAt),
	)
	return mapError(err)
}

// UpdateClient updates the name and type of a client.
func (s *Storage) UpdateClient(ctx context.Context, client persistence.Client) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE clients SET name = ?, type = ?, updated_at = ? WHERE id = ?`,
		client.Name, client.Type, formatTimestamp(client.UpdatedAt), client.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetClient retrieves a client by ID.
func (s *Storage) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	row := s.pool.DB().QueryRowContext(ctx, `
		SELECT id, name, type, created_at, updated_at FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

// ListClients returns clients ordered by name then ID.
func (s *Storage) ListClients(ctx context.Context) ([]persistence.Client, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, name, type, created_at, updated_at FROM clients ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var clients []persistence.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, mapError(rows.Err())
}

// DeleteClient removes a client. The contracts foreign key is RESTRICT, so a
// client that still owns contracts yields persistence.ErrReferenced.
func (s *Storage) DeleteClient(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanClient(row rowScanner) (persistence.Client, error) {
	var (
		client               persistence.Client
		createdAt, updatedAt string
	)
	if err := row.Scan(&client.ID, &client.Name, &client.Type, &createdAt, &updatedAt); err != nil {
		return persistence.Client{}, mapError(err)
	}
	var err error
	if client.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Client{}, err
	}
	if client.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Client{}, err
	}
	return client, nil
}

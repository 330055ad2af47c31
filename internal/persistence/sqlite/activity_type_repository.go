package sqlite

import (
	"context"

	"github.com/makarovada/legal-time/internal/persistence"
)

// CreateActivityType stores a new activity type.
func (s *Storage) CreateActivityType(ctx context.Context, activityType persistence.ActivityType) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO activity_types (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		activityType.ID, activityType.Name,
		formatTimestamp(activityType.CreatedAt), formatTimestamp(activityType.UpdatedAt),
	)
	return mapError(err)
}

// UpdateActivityType renames an activity type.
func (s *Storage) UpdateActivityType(ctx context.Context, activityType persistence.ActivityType) error {
	result, err := s.pool.DB().ExecContext(ctx, `
		UPDATE activity_types SET name = ?, updated_at = ? WHERE id = ?`,
		activityType.Name, formatTimestamp(activityType.UpdatedAt), activityType.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetActivityType retrieves an activity type by ID.
func (s *Storage) GetActivityType(ctx context.Context, id string) (persistence.ActivityType, error) {
	row := s.pool.DB().QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM activity_types WHERE id = ?`, id)
	return scanActivityType(row)
}

// ListActivityTypes returns activity types ordered by name.
func (s *Storage) ListActivityTypes(ctx context.Context) ([]persistence.ActivityType, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM activity_types ORDER BY name ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var activityTypes []persistence.ActivityType
	for rows.Next() {
		activityType, err := scanActivityType(rows)
		if err != nil {
			return nil, err
		}
		activityTypes = append(activityTypes, activityType)
	}
	return activityTypes, mapError(rows.Err())
}

// DeleteActivityType removes an unreferenced activity type.
func (s *Storage) DeleteActivityType(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM activity_types WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanActivityType(row rowScanner) (persistence.ActivityType, error) {
	var (
		activityType         persistence.ActivityType
		createdAt, updatedAt string
	)
	if err := row.Scan(&activityType.ID, &activityType.Name, &createdAt, &updatedAt); err != nil {
		return persistence.ActivityType{}, mapError(err)
	}
	var err error
	if activityType.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.ActivityType{}, err
	}
	if activityType.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.ActivityType{}, err
	}
	return activityType, nil
}

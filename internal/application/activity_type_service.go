package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// ActivityTypeService manages the catalog of activity types.
type ActivityTypeService struct {
	activities  ActivityTypeRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewActivityTypeService constructs an activity type service.
func NewActivityTypeService(activities ActivityTypeRepository, idGenerator func() string, now func() time.Time) *ActivityTypeService {
	return NewActivityTypeServiceWithLogger(activities, idGenerator, now, nil)
}

// NewActivityTypeServiceWithLogger constructs an activity type service with a specified logger.
func NewActivityTypeServiceWithLogger(activities ActivityTypeRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ActivityTypeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ActivityTypeService{activities: activities, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ActivityTypeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ActivityTypeService", operation, attrs...)
}

// Create persists a new activity type.
func (s *ActivityTypeService) Create(ctx context.Context, principal Principal, name string) (activity ActivityType, err error) {
	if s == nil {
		err = fmt.Errorf("ActivityTypeService is nil")
		return
	}
	if s.activities == nil {
		err = fmt.Errorf("activity type repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create activity type", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("activity_type_id", activity.ID).InfoContext(ctx, "activity type created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceActivityType, access.ActionCreate), false); err != nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		err = fieldError("name", "name is required")
		return
	}

	now := s.now()
	activity, err = s.activities.CreateActivityType(ctx, ActivityType{ID: s.idGenerator(), Name: name, CreatedAt: now, UpdatedAt: now})
	err = mapRepoError(err, "activity type name already exists", "")
	return
}

// Rename changes the name of an activity type.
func (s *ActivityTypeService) Rename(ctx context.Context, principal Principal, id, name string) (activity ActivityType, err error) {
	if s == nil {
		err = fmt.Errorf("ActivityTypeService is nil")
		return
	}
	if s.activities == nil {
		err = fmt.Errorf("activity type repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Rename", "principal_id", principal.EmployeeID, "activity_type_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to rename activity type", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "activity type renamed")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceActivityType, access.ActionUpdate), false); err != nil {
		return
	}

	var existing ActivityType
	if existing, err = s.activities.GetActivityType(ctx, id); err != nil {
		err = mapRepoError(err, "", "")
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		err = fieldError("name", "name is required")
		return
	}

	existing.Name = name
	existing.UpdatedAt = s.now()
	activity, err = s.activities.UpdateActivityType(ctx, existing)
	err = mapRepoError(err, "activity type name already exists", "")
	return
}

// Get returns one activity type.
func (s *ActivityTypeService) Get(ctx context.Context, principal Principal, id string) (ActivityType, error) {
	if s == nil || s.activities == nil {
		return ActivityType{}, fmt.Errorf("activity type repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceActivityType, access.ActionRead), false); err != nil {
		return ActivityType{}, err
	}
	activity, err := s.activities.GetActivityType(ctx, id)
	return activity, mapRepoError(err, "", "")
}

// List returns every activity type.
func (s *ActivityTypeService) List(ctx context.Context, principal Principal) ([]ActivityType, error) {
	if s == nil || s.activities == nil {
		return nil, fmt.Errorf("activity type repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceActivityType, access.ActionRead), false); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListActivityTypes(ctx)
	return activities, mapRepoError(err, "", "")
}

// Delete removes an activity type no time entry uses.
func (s *ActivityTypeService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("ActivityTypeService is nil")
	}
	if s.activities == nil {
		return fmt.Errorf("activity type repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceActivityType, access.ActionDelete), false); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "activity_type_id", id)
	if err := s.activities.DeleteActivityType(ctx, id); err != nil {
		err = mapRepoError(err, "", "activity type is used by time entries")
		logger.ErrorContext(ctx, "failed to delete activity type", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "activity type deleted")
	return nil
}

// EnsureDefaults creates each named activity type that does not exist yet.
// It runs without a principal and is meant for seeding.
func (s *ActivityTypeService) EnsureDefaults(ctx context.Context, names []string) (created int, err error) {
	if s == nil || s.activities == nil {
		return 0, fmt.Errorf("activity type repository not configured")
	}

	existing, err := s.activities.ListActivityTypes(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, activity := range existing {
		known[strings.ToLower(activity.Name)] = struct{}{}
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := known[strings.ToLower(name)]; ok {
			continue
		}
		now := s.now()
		if _, err := s.activities.CreateActivityType(ctx, ActivityType{ID: s.idGenerator(), Name: name, CreatedAt: now, UpdatedAt: now}); err != nil {
			return created, mapRepoError(err, "activity type name already exists", "")
		}
		known[strings.ToLower(name)] = struct{}{}
		created++
	}
	return created, nil
}

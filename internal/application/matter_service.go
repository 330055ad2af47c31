package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// MatterInput captures caller provided matter fields.
type MatterInput struct {
	ContractID  string
	Code        string
	Name        string
	Description string
}

// MatterService manages matters.
type MatterService struct {
	matters     MatterRepository
	contracts   ContractRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMatterService constructs a matter service.
func NewMatterService(matters MatterRepository, contracts ContractRepository, idGenerator func() string, now func() time.Time) *MatterService {
	return NewMatterServiceWithLogger(matters, contracts, idGenerator, now, nil)
}

// NewMatterServiceWithLogger constructs a matter service with a specified logger.
func NewMatterServiceWithLogger(matters MatterRepository, contracts ContractRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MatterService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MatterService{matters: matters, contracts: contracts, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *MatterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MatterService", operation, attrs...)
}

// Create validates input and persists a new matter.
func (s *MatterService) Create(ctx context.Context, principal Principal, input MatterInput) (matter Matter, err error) {
	if s == nil {
		err = fmt.Errorf("MatterService is nil")
		return
	}
	if s.matters == nil {
		err = fmt.Errorf("matter repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID, "contract_id", input.ContractID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create matter", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("matter_id", matter.ID).InfoContext(ctx, "matter created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceMatter, access.ActionCreate), false); err != nil {
		return
	}
	if err = s.validate(ctx, input); err != nil {
		return
	}

	now := s.now()
	matter, err = s.matters.CreateMatter(ctx, Matter{
		ID:          s.idGenerator(),
		ContractID:  strings.TrimSpace(input.ContractID),
		Code:        strings.TrimSpace(input.Code),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	err = mapRepoError(err, "matter code already exists", "")
	return
}

// Update changes every mutable field of a matter.
func (s *MatterService) Update(ctx context.Context, principal Principal, id string, input MatterInput) (matter Matter, err error) {
	if s == nil {
		err = fmt.Errorf("MatterService is nil")
		return
	}
	if s.matters == nil {
		err = fmt.Errorf("matter repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", principal.EmployeeID, "matter_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update matter", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "matter updated")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceMatter, access.ActionUpdate), false); err != nil {
		return
	}

	var existing Matter
	if existing, err = s.matters.GetMatter(ctx, id); err != nil {
		err = mapRepoError(err, "", "")
		return
	}
	if err = s.validate(ctx, input); err != nil {
		return
	}

	existing.ContractID = strings.TrimSpace(input.ContractID)
	existing.Code = strings.TrimSpace(input.Code)
	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.UpdatedAt = s.now()

	matter, err = s.matters.UpdateMatter(ctx, existing)
	err = mapRepoError(err, "matter code already exists", "")
	return
}

// Get returns one matter.
func (s *MatterService) Get(ctx context.Context, principal Principal, id string) (Matter, error) {
	if s == nil || s.matters == nil {
		return Matter{}, fmt.Errorf("matter repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceMatter, access.ActionRead), false); err != nil {
		return Matter{}, err
	}
	matter, err := s.matters.GetMatter(ctx, id)
	return matter, mapRepoError(err, "", "")
}

// List returns every matter.
func (s *MatterService) List(ctx context.Context, principal Principal) ([]Matter, error) {
	if s == nil || s.matters == nil {
		return nil, fmt.Errorf("matter repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceMatter, access.ActionRead), false); err != nil {
		return nil, err
	}
	matters, err := s.matters.ListMatters(ctx)
	return matters, mapRepoError(err, "", "")
}

// Delete removes a matter without time entries.
func (s *MatterService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("MatterService is nil")
	}
	if s.matters == nil {
		return fmt.Errorf("matter repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceMatter, access.ActionDelete), false); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "matter_id", id)
	if err := s.matters.DeleteMatter(ctx, id); err != nil {
		err = mapRepoError(err, "", "matter has time entries")
		logger.ErrorContext(ctx, "failed to delete matter", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "matter deleted")
	return nil
}

func (s *MatterService) validate(ctx context.Context, input MatterInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.ContractID) == "" {
		vErr.add("contract_id", "contract is required")
	}
	if strings.TrimSpace(input.Code) == "" {
		vErr.add("code", "code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if s.contracts != nil {
		if _, err := s.contracts.GetContract(ctx, strings.TrimSpace(input.ContractID)); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("contract %s: %w", input.ContractID, ErrNotFound)
			}
			return err
		}
	}
	return nil
}

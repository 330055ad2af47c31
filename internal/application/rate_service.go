package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// RateInput captures caller provided rate fields. Leaving both references
// empty describes the default rate.
type RateInput struct {
	Value      float64
	EmployeeID *string
	ContractID *string
}

// RateService manages billing rates.
type RateService struct {
	rates       RateRepository
	employees   EmployeeRepository
	contracts   ContractRepository
	resolver    *RateResolver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRateService constructs a rate service.
func NewRateService(rates RateRepository, employees EmployeeRepository, contracts ContractRepository, resolver *RateResolver, idGenerator func() string, now func() time.Time) *RateService {
	return NewRateServiceWithLogger(rates, employees, contracts, resolver, idGenerator, now, nil)
}

// NewRateServiceWithLogger constructs a rate service with a specified logger.
func NewRateServiceWithLogger(rates RateRepository, employees EmployeeRepository, contracts ContractRepository, resolver *RateResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RateService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RateService{
		rates:       rates,
		employees:   employees,
		contracts:   contracts,
		resolver:    resolver,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RateService", operation, attrs...)
}

const duplicateRateReason = "a rate with this scope already exists"

// Create validates input and persists a new rate.
func (s *RateService) Create(ctx context.Context, principal Principal, input RateInput) (rate Rate, err error) {
	if s == nil {
		err = fmt.Errorf("RateService is nil")
		return
	}
	if s.rates == nil {
		err = fmt.Errorf("rate repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create rate", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rate_id", rate.ID, "scope", rate.Scope()).InfoContext(ctx, "rate created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceRate, access.ActionCreate), false); err != nil {
		return
	}

	input.EmployeeID = normalizeOptionalString(input.EmployeeID)
	input.ContractID = normalizeOptionalString(input.ContractID)
	if err = s.validate(ctx, input); err != nil {
		return
	}

	now := s.now()
	rate, err = s.rates.CreateRate(ctx, Rate{
		ID:         s.idGenerator(),
		Value:      input.Value,
		EmployeeID: input.EmployeeID,
		ContractID: input.ContractID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	err = mapRepoError(err, duplicateRateReason, "")
	return
}

// Update changes the value and scope of a rate.
func (s *RateService) Update(ctx context.Context, principal Principal, id string, input RateInput) (rate Rate, err error) {
	if s == nil {
		err = fmt.Errorf("RateService is nil")
		return
	}
	if s.rates == nil {
		err = fmt.Errorf("rate repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", principal.EmployeeID, "rate_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update rate", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("scope", rate.Scope()).InfoContext(ctx, "rate updated")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceRate, access.ActionUpdate), false); err != nil {
		return
	}

	var existing Rate
	if existing, err = s.rates.GetRate(ctx, id); err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	input.EmployeeID = normalizeOptionalString(input.EmployeeID)
	input.ContractID = normalizeOptionalString(input.ContractID)
	if err = s.validate(ctx, input); err != nil {
		return
	}

	existing.Value = input.Value
	existing.EmployeeID = input.EmployeeID
	existing.ContractID = input.ContractID
	existing.UpdatedAt = s.now()

	rate, err = s.rates.UpdateRate(ctx, existing)
	err = mapRepoError(err, duplicateRateReason, "")
	return
}

// Get returns one rate.
func (s *RateService) Get(ctx context.Context, principal Principal, id string) (Rate, error) {
	if s == nil || s.rates == nil {
		return Rate{}, fmt.Errorf("rate repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceRate, access.ActionRead), false); err != nil {
		return Rate{}, err
	}
	rate, err := s.rates.GetRate(ctx, id)
	return rate, mapRepoError(err, "", "")
}

// List returns every rate.
func (s *RateService) List(ctx context.Context, principal Principal) ([]Rate, error) {
	if s == nil || s.rates == nil {
		return nil, fmt.Errorf("rate repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceRate, access.ActionRead), false); err != nil {
		return nil, err
	}
	rates, err := s.rates.ListRates(ctx)
	return rates, mapRepoError(err, "", "")
}

// Delete removes a rate no time entry references.
func (s *RateService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("RateService is nil")
	}
	if s.rates == nil {
		return fmt.Errorf("rate repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceRate, access.ActionDelete), false); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "rate_id", id)
	if err := s.rates.DeleteRate(ctx, id); err != nil {
		err = mapRepoError(err, "", "rate is referenced by time entries")
		logger.ErrorContext(ctx, "failed to delete rate", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "rate deleted")
	return nil
}

// Resolve reports which rate would apply to employeeID working on matterID.
func (s *RateService) Resolve(ctx context.Context, principal Principal, employeeID, matterID string) (Rate, error) {
	if s == nil || s.resolver == nil {
		return Rate{}, fmt.Errorf("rate resolver not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceRate, access.ActionRead), false); err != nil {
		return Rate{}, err
	}
	if employeeID == "" {
		return Rate{}, fieldError("employee_id", "employee is required")
	}
	return s.resolver.Resolve(ctx, employeeID, matterID)
}

func (s *RateService) validate(ctx context.Context, input RateInput) error {
	vErr := &ValidationError{}
	if input.Value <= 0 {
		vErr.add("value", "value must be positive")
	}
	if input.EmployeeID != nil && input.ContractID != nil {
		vErr.add("scope", "a rate applies to an employee or a contract, not both")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if input.EmployeeID != nil && s.employees != nil {
		if _, err := s.employees.GetEmployee(ctx, *input.EmployeeID); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("employee %s: %w", *input.EmployeeID, ErrNotFound)
			}
			return err
		}
	}
	if input.ContractID != nil && s.contracts != nil {
		if _, err := s.contracts.GetContract(ctx, *input.ContractID); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("contract %s: %w", *input.ContractID, ErrNotFound)
			}
			return err
		}
	}
	return nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// ContractInput captures caller provided contract fields. Date is YYYY-MM-DD.
type ContractInput struct {
	ClientID string
	Number   string
	Date     string
}

// ContractService manages contracts. Deleting a contract removes its matters.
type ContractService struct {
	contracts   ContractRepository
	clients     ClientRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewContractService constructs a contract service.
func NewContractService(contracts ContractRepository, clients ClientRepository, idGenerator func() string, now func() time.Time) *ContractService {
	return NewContractServiceWithLogger(contracts, clients, idGenerator, now, nil)
}

// NewContractServiceWithLogger constructs a contract service with a specified logger.
func NewContractServiceWithLogger(contracts ContractRepository, clients ClientRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ContractService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ContractService{contracts: contracts, clients: clients, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ContractService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ContractService", operation, attrs...)
}

// Create validates input and persists a new contract.
func (s *ContractService) Create(ctx context.Context, principal Principal, input ContractInput) (contract Contract, err error) {
	if s == nil {
		err = fmt.Errorf("ContractService is nil")
		return
	}
	if s.contracts == nil {
		err = fmt.Errorf("contract repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID, "client_id", input.ClientID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create contract", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("contract_id", contract.ID).InfoContext(ctx, "contract created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceContract, access.ActionCreate), false); err != nil {
		return
	}

	var date time.Time
	if date, err = s.validate(ctx, input); err != nil {
		return
	}

	now := s.now()
	contract, err = s.contracts.CreateContract(ctx, Contract{
		ID:        s.idGenerator(),
		ClientID:  strings.TrimSpace(input.ClientID),
		Number:    strings.TrimSpace(input.Number),
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	err = mapRepoError(err, "contract number already exists", "")
	return
}

// Update changes a contract's client, number and date.
func (s *ContractService) Update(ctx context.Context, principal Principal, id string, input ContractInput) (contract Contract, err error) {
	if s == nil {
		err = fmt.Errorf("ContractService is nil")
		return
	}
	if s.contracts == nil {
		err = fmt.Errorf("contract repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", principal.EmployeeID, "contract_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update contract", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "contract updated")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceContract, access.ActionUpdate), false); err != nil {
		return
	}

	var existing Contract
	if existing, err = s.contracts.GetContract(ctx, id); err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	var date time.Time
	if date, err = s.validate(ctx, input); err != nil {
		return
	}

	existing.ClientID = strings.TrimSpace(input.ClientID)
	existing.Number = strings.TrimSpace(input.Number)
	existing.Date = date
	existing.UpdatedAt = s.now()

	contract, err = s.contracts.UpdateContract(ctx, existing)
	err = mapRepoError(err, "contract number already exists", "")
	return
}

// Get returns one contract.
func (s *ContractService) Get(ctx context.Context, principal Principal, id string) (Contract, error) {
	if s == nil || s.contracts == nil {
		return Contract{}, fmt.Errorf("contract repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceContract, access.ActionRead), false); err != nil {
		return Contract{}, err
	}
	contract, err := s.contracts.GetContract(ctx, id)
	return contract, mapRepoError(err, "", "")
}

// List returns every contract.
func (s *ContractService) List(ctx context.Context, principal Principal) ([]Contract, error) {
	if s == nil || s.contracts == nil {
		return nil, fmt.Errorf("contract repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceContract, access.ActionRead), false); err != nil {
		return nil, err
	}
	contracts, err := s.contracts.ListContracts(ctx)
	return contracts, mapRepoError(err, "", "")
}

// Delete removes a contract together with its matters. It fails with a
// conflict while any of those matters has time entries.
func (s *ContractService) Delete(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ContractService is nil")
	}
	if s.contracts == nil {
		return fmt.Errorf("contract repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "contract_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete contract", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "contract deleted")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceContract, access.ActionDelete), false); err != nil {
		return
	}
	err = mapRepoError(s.contracts.DeleteContract(ctx, id), "", "contract matters have time entries")
	return
}

func (s *ContractService) validate(ctx context.Context, input ContractInput) (time.Time, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.ClientID) == "" {
		vErr.add("client_id", "client is required")
	}
	if strings.TrimSpace(input.Number) == "" {
		vErr.add("number", "number is required")
	}
	date, err := parseDate(input.Date)
	if err != nil {
		vErr.add("date", "date must be formatted as YYYY-MM-DD")
	}
	if vErr.HasErrors() {
		return time.Time{}, vErr
	}

	if s.clients != nil {
		if _, err := s.clients.GetClient(ctx, strings.TrimSpace(input.ClientID)); err != nil {
			if isNotFound(err) {
				return time.Time{}, fmt.Errorf("client %s: %w", input.ClientID, ErrNotFound)
			}
			return time.Time{}, err
		}
	}
	return date, nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// ClientInput captures caller provided client fields.
type ClientInput struct {
	Name string
	Type string
}

// ClientService manages clients.
type ClientService struct {
	clients     ClientRepository
	contracts   ContractRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClientService constructs a client service.
func NewClientService(clients ClientRepository, contracts ContractRepository, idGenerator func() string, now func() time.Time) *ClientService {
	return NewClientServiceWithLogger(clients, contracts, idGenerator, now, nil)
}

// NewClientServiceWithLogger constructs a client service with a specified logger.
func NewClientServiceWithLogger(clients ClientRepository, contracts ContractRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClientService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClientService{clients: clients, contracts: contracts, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ClientService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClientService", operation, attrs...)
}

// Create validates input and persists a new client.
func (s *ClientService) Create(ctx context.Context, principal Principal, input ClientInput) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("client_id", client.ID).InfoContext(ctx, "client created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceClient, access.ActionCreate), false); err != nil {
		return
	}
	if vErr := validateClientInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	client, err = s.clients.CreateClient(ctx, Client{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Type:      ClientType(strings.ToLower(strings.TrimSpace(input.Type))),
		CreatedAt: now,
		UpdatedAt: now,
	})
	err = mapRepoError(err, "client already exists", "")
	return
}

// Update changes the name and type of a client.
func (s *ClientService) Update(ctx context.Context, principal Principal, id string, input ClientInput) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", principal.EmployeeID, "client_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "client updated")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceClient, access.ActionUpdate), false); err != nil {
		return
	}

	var existing Client
	existing, err = s.clients.GetClient(ctx, id)
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}
	if vErr := validateClientInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Type = ClientType(strings.ToLower(strings.TrimSpace(input.Type)))
	existing.UpdatedAt = s.now()

	client, err = s.clients.UpdateClient(ctx, existing)
	err = mapRepoError(err, "client already exists", "")
	return
}

// Get returns one client.
func (s *ClientService) Get(ctx context.Context, principal Principal, id string) (Client, error) {
	if s == nil || s.clients == nil {
		return Client{}, fmt.Errorf("client repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceClient, access.ActionRead), false); err != nil {
		return Client{}, err
	}
	client, err := s.clients.GetClient(ctx, id)
	return client, mapRepoError(err, "", "")
}

// List returns clients sorted by name.
func (s *ClientService) List(ctx context.Context, principal Principal) ([]Client, error) {
	if s == nil || s.clients == nil {
		return nil, fmt.Errorf("client repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceClient, access.ActionRead), false); err != nil {
		return nil, err
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, mapRepoError(err, "", "")
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].Name) < strings.ToLower(clients[j].Name)
	})
	return clients, nil
}

// Delete removes a client that owns no contracts.
func (s *ClientService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return fmt.Errorf("client repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceClient, access.ActionDelete), false); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "client_id", id)

	if s.contracts != nil {
		count, err := s.contracts.CountContractsForClient(ctx, id)
		if err != nil {
			logger.ErrorContext(ctx, "failed to count contracts", "error", err, "error_kind", ErrorKind(err))
			return err
		}
		if count > 0 {
			err = conflictf("client has %d contract(s)", count)
			logger.ErrorContext(ctx, "failed to delete client", "error", err, "error_kind", ErrorKind(err))
			return err
		}
	}

	if err := s.clients.DeleteClient(ctx, id); err != nil {
		err = mapRepoError(err, "", "client has contracts")
		logger.ErrorContext(ctx, "failed to delete client", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "client deleted")
	return nil
}

func validateClientInput(input ClientInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if !ClientType(strings.ToLower(strings.TrimSpace(input.Type))).Valid() {
		vErr.add("type", "type must be legal or physical")
	}
	return vErr
}

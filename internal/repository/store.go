// Package repository adapts the persistence layer to the repository
// interfaces the application services consume.
package repository

import (
	"context"

	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/persistence"
)

// Backend is the full persistence surface the adapters translate.
type Backend interface {
	persistence.EmployeeRepository
	persistence.ClientRepository
	persistence.ContractRepository
	persistence.MatterRepository
	persistence.ActivityTypeRepository
	persistence.RateRepository
	persistence.TimeEntryRepository
}

// Store converts between application and persistence records. Writes read
// the stored row back so callers observe what the database holds.
type Store struct {
	backend Backend
}

var (
	_ application.EmployeeRepository     = (*Store)(nil)
	_ application.ClientRepository       = (*Store)(nil)
	_ application.ContractRepository     = (*Store)(nil)
	_ application.MatterRepository       = (*Store)(nil)
	_ application.ActivityTypeRepository = (*Store)(nil)
	_ application.RateRepository         = (*Store)(nil)
	_ application.TimeEntryRepository    = (*Store)(nil)
	_ application.ReportSource           = (*Store)(nil)
)

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) CreateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := s.backend.CreateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, err
	}
	return s.GetEmployee(ctx, employee.ID)
}

func (s *Store) UpdateEmployee(ctx context.Context, employee application.Employee) (application.Employee, error) {
	if err := s.backend.UpdateEmployee(ctx, toPersistenceEmployee(employee)); err != nil {
		return application.Employee{}, err
	}
	return s.GetEmployee(ctx, employee.ID)
}

func (s *Store) GetEmployee(ctx context.Context, id string) (application.Employee, error) {
	stored, err := s.backend.GetEmployee(ctx, id)
	if err != nil {
		return application.Employee{}, err
	}
	return toApplicationEmployee(stored), nil
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (application.Employee, error) {
	stored, err := s.backend.GetEmployeeByEmail(ctx, email)
	if err != nil {
		return application.Employee{}, err
	}
	return toApplicationEmployee(stored), nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]application.Employee, error) {
	models, err := s.backend.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationEmployee), nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.backend.DeleteEmployee(ctx, id)
}

func (s *Store) CreateClient(ctx context.Context, client application.Client) (application.Client, error) {
	if err := s.backend.CreateClient(ctx, toPersistenceClient(client)); err != nil {
		return application.Client{}, err
	}
	return s.GetClient(ctx, client.ID)
}

func (s *Store) UpdateClient(ctx context.Context, client application.Client) (application.Client, error) {
	if err := s.backend.UpdateClient(ctx, toPersistenceClient(client)); err != nil {
		return application.Client{}, err
	}
	return s.GetClient(ctx, client.ID)
}

func (s *Store) GetClient(ctx context.Context, id string) (application.Client, error) {
	stored, err := s.backend.GetClient(ctx, id)
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (s *Store) ListClients(ctx context.Context) ([]application.Client, error) {
	models, err := s.backend.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationClient), nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.backend.DeleteClient(ctx, id)
}

func (s *Store) CreateContract(ctx context.Context, contract application.Contract) (application.Contract, error) {
	if err := s.backend.CreateContract(ctx, persistence.Contract(contract)); err != nil {
		return application.Contract{}, err
	}
	return s.GetContract(ctx, contract.ID)
}

func (s *Store) UpdateContract(ctx context.Context, contract application.Contract) (application.Contract, error) {
	if err := s.backend.UpdateContract(ctx, persistence.Contract(contract)); err != nil {
		return application.Contract{}, err
	}
	return s.GetContract(ctx, contract.ID)
}

func (s *Store) GetContract(ctx context.Context, id string) (application.Contract, error) {
	stored, err := s.backend.GetContract(ctx, id)
	if err != nil {
		return application.Contract{}, err
	}
	return application.Contract(stored), nil
}

func (s *Store) ListContracts(ctx context.Context) ([]application.Contract, error) {
	models, err := s.backend.ListContracts(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(c persistence.Contract) application.Contract { return application.Contract(c) }), nil
}

func (s *Store) CountContractsForClient(ctx context.Context, clientID string) (int, error) {
	return s.backend.CountContractsForClient(ctx, clientID)
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	return s.backend.DeleteContract(ctx, id)
}

func (s *Store) CreateMatter(ctx context.Context, matter application.Matter) (application.Matter, error) {
	if err := s.backend.CreateMatter(ctx, persistence.Matter(matter)); err != nil {
		return application.Matter{}, err
	}
	return s.GetMatter(ctx, matter.ID)
}

func (s *Store) UpdateMatter(ctx context.Context, matter application.Matter) (application.Matter, error) {
	if err := s.backend.UpdateMatter(ctx, persistence.Matter(matter)); err != nil {
		return application.Matter{}, err
	}
	return s.GetMatter(ctx, matter.ID)
}

func (s *Store) GetMatter(ctx context.Context, id string) (application.Matter, error) {
	stored, err := s.backend.GetMatter(ctx, id)
	if err != nil {
		return application.Matter{}, err
	}
	return application.Matter(stored), nil
}

func (s *Store) ListMatters(ctx context.Context) ([]application.Matter, error) {
	models, err := s.backend.ListMatters(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(m persistence.Matter) application.Matter { return application.Matter(m) }), nil
}

func (s *Store) DeleteMatter(ctx context.Context, id string) error {
	return s.backend.DeleteMatter(ctx, id)
}

func (s *Store) CreateActivityType(ctx context.Context, activity application.ActivityType) (application.ActivityType, error) {
	if err := s.backend.CreateActivityType(ctx, persistence.ActivityType(activity)); err != nil {
		return application.ActivityType{}, err
	}
	return s.GetActivityType(ctx, activity.ID)
}

func (s *Store) UpdateActivityType(ctx context.Context, activity application.ActivityType) (application.ActivityType, error) {
	if err := s.backend.UpdateActivityType(ctx, persistence.ActivityType(activity)); err != nil {
		return application.ActivityType{}, err
	}
	return s.GetActivityType(ctx, activity.ID)
}

func (s *Store) GetActivityType(ctx context.Context, id string) (application.ActivityType, error) {
	stored, err := s.backend.GetActivityType(ctx, id)
	if err != nil {
		return application.ActivityType{}, err
	}
	return application.ActivityType(stored), nil
}

func (s *Store) ListActivityTypes(ctx context.Context) ([]application.ActivityType, error) {
	models, err := s.backend.ListActivityTypes(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(a persistence.ActivityType) application.ActivityType { return application.ActivityType(a) }), nil
}

func (s *Store) DeleteActivityType(ctx context.Context, id string) error {
	return s.backend.DeleteActivityType(ctx, id)
}

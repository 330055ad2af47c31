package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// EmployeeInput captures caller provided employee fields. An empty Password
// on update keeps the current hash.
type EmployeeInput struct {
	Name     string
	Email    string
	Role     string
	Password string
}

// PasswordHashing hashes plaintext passwords for storage.
type PasswordHashing interface {
	Hash(password string) (string, error)
}

// EmployeeService manages staff accounts.
type EmployeeService struct {
	employees   EmployeeRepository
	hasher      PasswordHashing
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmployeeService constructs an employee service using DefaultPasswordHasher.
func NewEmployeeService(employees EmployeeRepository, idGenerator func() string, now func() time.Time) *EmployeeService {
	return NewEmployeeServiceWithLogger(employees, nil, idGenerator, now, nil)
}

// NewEmployeeServiceWithLogger constructs an employee service with a specified hasher and logger.
func NewEmployeeServiceWithLogger(employees EmployeeRepository, hasher PasswordHashing, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EmployeeService {
	if hasher == nil {
		hasher = DefaultPasswordHasher
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{employees: employees, hasher: hasher, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *EmployeeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation, attrs...)
}

// Create registers a new employee.
func (s *EmployeeService) Create(ctx context.Context, principal Principal, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID, "role", employee.Role).InfoContext(ctx, "employee created")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceEmployee, access.ActionCreate), false); err != nil {
		return
	}
	employee, err = s.register(ctx, input)
	return
}

// Bootstrap creates an employee without a principal. It is meant for the
// seed command that provisions the first administrator.
func (s *EmployeeService) Bootstrap(ctx context.Context, input EmployeeInput) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	return s.register(ctx, input)
}

func (s *EmployeeService) register(ctx context.Context, input EmployeeInput) (Employee, error) {
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee repository not configured")
	}

	role, vErr := validateEmployeeInput(input, true)
	if vErr.HasErrors() {
		return Employee{}, vErr
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return Employee{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	employee, err := s.employees.CreateEmployee(ctx, Employee{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Employee{}, mapRepoError(err, "email already registered", "")
	}
	return employee, nil
}

// Update changes an employee's profile, role and optionally password. The
// calendar link is preserved.
func (s *EmployeeService) Update(ctx context.Context, principal Principal, id string, input EmployeeInput) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}
	if s.employees == nil {
		err = fmt.Errorf("employee repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "principal_id", principal.EmployeeID, "employee_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("role", employee.Role).InfoContext(ctx, "employee updated")
	}()

	if err = checkAccess(principal, access.Op(access.ResourceEmployee, access.ActionUpdate), false); err != nil {
		return
	}

	var existing Employee
	if existing, err = s.employees.GetEmployee(ctx, id); err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	role, vErr := validateEmployeeInput(input, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Email = normalizeEmail(input.Email)
	existing.Role = role
	existing.UpdatedAt = s.now()
	if input.Password != "" {
		if existing.PasswordHash, err = s.hasher.Hash(input.Password); err != nil {
			err = fmt.Errorf("hash password: %w", err)
			return
		}
	}

	employee, err = s.employees.UpdateEmployee(ctx, existing)
	err = mapRepoError(err, "email already registered", "")
	return
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, principal Principal, id string) (Employee, error) {
	if s == nil || s.employees == nil {
		return Employee{}, fmt.Errorf("employee repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceEmployee, access.ActionRead), principal.Owns(id)); err != nil {
		return Employee{}, err
	}
	employee, err := s.employees.GetEmployee(ctx, id)
	return employee, mapRepoError(err, "", "")
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context, principal Principal) ([]Employee, error) {
	if s == nil || s.employees == nil {
		return nil, fmt.Errorf("employee repository not configured")
	}
	if err := checkAccess(principal, access.Op(access.ResourceEmployee, access.ActionRead), false); err != nil {
		return nil, err
	}
	employees, err := s.employees.ListEmployees(ctx)
	return employees, mapRepoError(err, "", "")
}

// Delete removes an employee. Callers can never delete their own account.
func (s *EmployeeService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return fmt.Errorf("employee repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.EmployeeID, "employee_id", id)

	if err := checkAccess(principal, access.Op(access.ResourceEmployee, access.ActionDelete), false); err != nil {
		logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if principal.Owns(id) {
		err := fmt.Errorf("%w: cannot delete own account", ErrForbidden)
		logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.employees.DeleteEmployee(ctx, id); err != nil {
		err = mapRepoError(err, "", "employee has time entries")
		logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "employee deleted")
	return nil
}

func validateEmployeeInput(input EmployeeInput, requirePassword bool) (access.Role, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		vErr.add("email", "email is invalid")
	}

	role, err := access.ParseRole(input.Role)
	if err != nil {
		vErr.add("role", "role must be lawyer, senior_lawyer or admin")
	}

	if requirePassword && input.Password == "" {
		vErr.add("password", "password is required")
	}

	return role, vErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier interface {
	Verify(encoded, password string) error
}

// LoginResult carries an issued bearer token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Employee  Employee
}

// AuthService handles password login and bearer token authentication.
type AuthService struct {
	employees EmployeeRepository
	tokens    TokenIssuer
	verifier  PasswordVerifier
	logger    *slog.Logger
}

// NewAuthService constructs an AuthService using DefaultPasswordHasher.
func NewAuthService(employees EmployeeRepository, tokens TokenIssuer) *AuthService {
	return NewAuthServiceWithLogger(employees, tokens, nil, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified verifier and logger.
func NewAuthServiceWithLogger(employees EmployeeRepository, tokens TokenIssuer, verifier PasswordVerifier, logger *slog.Logger) *AuthService {
	if verifier == nil {
		verifier = DefaultPasswordHasher
	}
	return &AuthService{employees: employees, tokens: tokens, verifier: verifier, logger: defaultLogger(logger)}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

func (s *AuthService) ready() error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.employees == nil {
		return fmt.Errorf("employee repository not configured")
	}
	if s.tokens == nil {
		return fmt.Errorf("token issuer not configured")
	}
	return nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (result LoginResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	email = normalizeEmail(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", result.Employee.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var employee Employee
	employee, err = s.employees.GetEmployeeByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			err = ErrInvalidCredentials
		}
		return
	}

	if verr := s.verifier.Verify(employee.PasswordHash, password); verr != nil {
		err = ErrInvalidCredentials
		return
	}

	var (
		token     string
		expiresAt time.Time
	)
	token, expiresAt, err = s.tokens.IssueToken(employee.ID, employee.Role)
	if err != nil {
		err = fmt.Errorf("issue token: %w", err)
		return
	}

	result = LoginResult{Token: token, ExpiresAt: expiresAt, Employee: employee}
	return
}

// Authenticate validates a bearer token and returns the caller. The role is
// re-read from storage so role changes apply to outstanding tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (principal Principal, err error) {
	if err = s.ready(); err != nil {
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	var employeeID string
	if employeeID, err = s.tokens.ParseToken(token); err != nil {
		s.loggerWith(ctx, "Authenticate").DebugContext(ctx, "token rejected", "error", err)
		err = ErrInvalidCredentials
		return
	}

	var employee Employee
	if employee, err = s.employees.GetEmployee(ctx, employeeID); err != nil {
		if isNotFound(err) {
			err = ErrInvalidCredentials
		}
		return
	}

	principal = Principal{EmployeeID: employee.ID, Role: employee.Role}
	return
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, principal Principal) (Employee, error) {
	if err := s.ready(); err != nil {
		return Employee{}, err
	}
	employee, err := s.employees.GetEmployee(ctx, principal.EmployeeID)
	if err != nil {
		if isNotFound(err) {
			return Employee{}, ErrInvalidCredentials
		}
		return Employee{}, err
	}
	return employee, nil
}

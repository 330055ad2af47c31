// Package sqlite implements the persistence repositories on top of
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/makarovada/legal-time/internal/persistence"
	"github.com/makarovada/legal-time/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage implements every persistence repository against one SQLite database.
type Storage struct {
	pool   *ConnectionPool
	retry  RetryConfig
	logger *slog.Logger
}

var (
	_ persistence.EmployeeRepository     = (*Storage)(nil)
	_ persistence.ClientRepository       = (*Storage)(nil)
	_ persistence.ContractRepository     = (*Storage)(nil)
	_ persistence.MatterRepository       = (*Storage)(nil)
	_ persistence.ActivityTypeRepository = (*Storage)(nil)
	_ persistence.RateRepository         = (*Storage)(nil)
	_ persistence.TimeEntryRepository    = (*Storage)(nil)
)

// Option customises Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migration output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryConfig overrides the lock contention retry policy.
func WithRetryConfig(config RetryConfig) Option {
	return func(s *Storage) {
		s.retry = config
	}
}

// Open connects to the SQLite database described by dsn. A bare file path is
// accepted as well as a file: URI.
func Open(dsn string, opts ...Option) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	storage := &Storage{
		pool:   pool,
		retry:  DefaultRetryConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	runner := s.migrationRunner()
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.migrationRunner().Status(ctx)
}

func (s *Storage) migrationRunner() *migration.Runner {
	return migration.NewRunner(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
}

package testfixtures

import (
	"io"
	"log/slog"
	"time"

	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/export"
	"github.com/makarovada/legal-time/internal/repository"
)

// FastPasswordHasher keeps argon2id but with parameters cheap enough for tests.
var FastPasswordHasher = application.PasswordHasher{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services is the full application layer over one store.
type Services struct {
	Employees     *application.EmployeeService
	Clients       *application.ClientService
	Contracts     *application.ContractService
	Matters       *application.MatterService
	ActivityTypes *application.ActivityTypeService
	Rates         *application.RateService
	Resolver      *application.RateResolver
	TimeEntries   *application.TimeEntryService
	Reports       *application.ReportService
}

// NewServices wires every service to store. Time entries mirror to sync when
// it is non-nil.
func (f *ServiceFactory) NewServices(store *repository.Store, sync application.CalendarSync) *Services {
	ids := f.IDGenerator.NextFunc()
	now := f.Clock.NowFunc()

	resolver := application.NewRateResolverWithLogger(store, store, ids, now, application.DefaultRateValue, f.Logger)
	entries := application.NewTimeEntryServiceWithLogger(store, store, store, resolver, ids, now, f.Logger)
	if sync != nil {
		entries = entries.WithCalendar(sync, store, time.Second)
	}

	return &Services{
		Employees:     application.NewEmployeeServiceWithLogger(store, FastPasswordHasher, ids, now, f.Logger),
		Clients:       application.NewClientServiceWithLogger(store, store, ids, now, f.Logger),
		Contracts:     application.NewContractServiceWithLogger(store, store, ids, now, f.Logger),
		Matters:       application.NewMatterServiceWithLogger(store, store, ids, now, f.Logger),
		ActivityTypes: application.NewActivityTypeServiceWithLogger(store, ids, now, f.Logger),
		Rates:         application.NewRateServiceWithLogger(store, store, store, resolver, ids, now, f.Logger),
		Resolver:      resolver,
		TimeEntries:   entries,
		Reports:       application.NewReportServiceWithLogger(store, export.XLSXRenderer{}, f.Logger),
	}
}

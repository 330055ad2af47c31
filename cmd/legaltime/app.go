package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/auth"
	"github.com/makarovada/legal-time/internal/calendar/google"
	"github.com/makarovada/legal-time/internal/config"
	"github.com/makarovada/legal-time/internal/export"
	httptransport "github.com/makarovada/legal-time/internal/http"
	"github.com/makarovada/legal-time/internal/logging"
	"github.com/makarovada/legal-time/internal/metrics"
	"github.com/makarovada/legal-time/internal/persistence/sqlite"
	"github.com/makarovada/legal-time/internal/repository"
)

// app holds every long lived component built from one configuration.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	storage *sqlite.Storage
	metrics *metrics.Recorder
	tokens  *auth.TokenManager

	auth          *application.AuthService
	employees     *application.EmployeeService
	clients       *application.ClientService
	contracts     *application.ContractService
	matters       *application.MatterService
	activityTypes *application.ActivityTypeService
	rates         *application.RateService
	timeEntries   *application.TimeEntryService
	reports       *application.ReportService
	calendar      *application.CalendarService
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	return newApp(ctx, cfg, logger)
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, err := sqlite.Open(cfg.SQLiteDSN, sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	var (
		sync   application.CalendarSync = application.NoopCalendar{}
		linker application.CalendarLinker
		states application.StateCodec
	)
	if cfg.CalendarEnabled {
		sealer, err := google.NewSealer(cfg.TokenSealKey)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		client, err := google.NewClient(google.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}, sealer)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		sync, linker, states = client, client, tokens
	}

	store := repository.New(storage)
	recorder := metrics.NewRecorder()
	ids := uuid.NewString

	resolver := application.NewRateResolverWithLogger(store, store, ids, nil, cfg.DefaultRate, logger)
	timeEntries := application.NewTimeEntryServiceWithLogger(store, store, store, resolver, ids, nil, logger).
		WithMetrics(recorder).
		WithCalendar(sync, store, cfg.CalendarTimeout)

	return &app{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		metrics: recorder,
		tokens:  tokens,

		auth:          application.NewAuthServiceWithLogger(store, tokens, nil, logger),
		employees:     application.NewEmployeeServiceWithLogger(store, nil, ids, nil, logger),
		clients:       application.NewClientServiceWithLogger(store, store, ids, nil, logger),
		contracts:     application.NewContractServiceWithLogger(store, store, ids, nil, logger),
		matters:       application.NewMatterServiceWithLogger(store, store, ids, nil, logger),
		activityTypes: application.NewActivityTypeServiceWithLogger(store, ids, nil, logger),
		rates:         application.NewRateServiceWithLogger(store, store, store, resolver, ids, nil, logger),
		timeEntries:   timeEntries,
		reports:       application.NewReportServiceWithLogger(store, export.XLSXRenderer{}, logger),
		calendar: application.NewCalendarService(application.CalendarServiceDeps{
			Employees:  store,
			Entries:    store,
			Matters:    store,
			Activities: store,
			Sync:       sync,
			Linker:     linker,
			States:     states,
			Metrics:    recorder,
			Timeout:    cfg.CalendarTimeout,
			Logger:     logger,
		}),
	}, nil
}

func (a *app) handler() http.Handler {
	logger := a.logger
	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(a.auth, logger),
		Employees:     httptransport.NewEmployeeHandler(a.employees, logger),
		Catalog:       httptransport.NewCatalogHandler(a.clients, a.contracts, a.matters, a.activityTypes, logger),
		Rates:         httptransport.NewRateHandler(a.rates, logger),
		TimeEntries:   httptransport.NewTimeEntryHandler(a.timeEntries, a.reports, a.calendar, logger),
		Calendar:      httptransport.NewCalendarHandler(a.calendar, logger),
		Authenticator: a.auth,
		Health:        a.storage,
		Metrics:       a.metrics.Handler(),
		Observer:      a.metrics,
		Logger:        logger,
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
}

func (a *app) Close() error {
	if a == nil || a.storage == nil {
		return nil
	}
	if err := a.storage.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

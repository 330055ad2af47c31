package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires handlers into the router. Nil handlers leave their
// routes unregistered.
type RouterConfig struct {
	Auth        *AuthHandler
	Employees   *EmployeeHandler
	Catalog     *CatalogHandler
	Rates       *RateHandler
	TimeEntries *TimeEntryHandler
	Calendar    *CalendarHandler

	Authenticator Authenticator
	Health        Pinger
	Metrics       http.Handler
	Observer      RequestObserver
	Logger        *slog.Logger
	Middleware    []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP API. Login, the calendar callback, /healthz and
// /metrics are public; every other route requires a bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	if cfg.Observer != nil {
		router.Use(InstrumentRequests(cfg.Observer))
	}

	router.HandleFunc("/healthz", healthHandler(cfg.Health)).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}
	if cfg.Auth != nil {
		router.HandleFunc("/auth/login", cfg.Auth.Login).Methods(http.MethodPost)
	}
	if cfg.Calendar != nil {
		router.HandleFunc("/calendar/callback", cfg.Calendar.Callback).Methods(http.MethodGet)
	}

	api := router.NewRoute().Subrouter()
	if cfg.Authenticator != nil {
		api.Use(RequireAuth(cfg.Authenticator, cfg.Logger))
	}

	if cfg.Auth != nil {
		api.HandleFunc("/auth/me", cfg.Auth.Me).Methods(http.MethodGet)
	}

	if h := cfg.Employees; h != nil {
		api.HandleFunc("/employees", h.List).Methods(http.MethodGet)
		api.HandleFunc("/employees", h.Create).Methods(http.MethodPost)
		api.HandleFunc("/employees/{id}", h.Get).Methods(http.MethodGet)
		api.HandleFunc("/employees/{id}", h.Update).Methods(http.MethodPut)
		api.HandleFunc("/employees/{id}", h.Delete).Methods(http.MethodDelete)
	}

	if h := cfg.Catalog; h != nil {
		api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet)
		api.HandleFunc("/clients", h.CreateClient).Methods(http.MethodPost)
		api.HandleFunc("/clients/{id}", h.GetClient).Methods(http.MethodGet)
		api.HandleFunc("/clients/{id}", h.UpdateClient).Methods(http.MethodPut)
		api.HandleFunc("/clients/{id}", h.DeleteClient).Methods(http.MethodDelete)

		api.HandleFunc("/contracts", h.ListContracts).Methods(http.MethodGet)
		api.HandleFunc("/contracts", h.CreateContract).Methods(http.MethodPost)
		api.HandleFunc("/contracts/{id}", h.GetContract).Methods(http.MethodGet)
		api.HandleFunc("/contracts/{id}", h.UpdateContract).Methods(http.MethodPut)
		api.HandleFunc("/contracts/{id}", h.DeleteContract).Methods(http.MethodDelete)

		api.HandleFunc("/matters", h.ListMatters).Methods(http.MethodGet)
		api.HandleFunc("/matters", h.CreateMatter).Methods(http.MethodPost)
		api.HandleFunc("/matters/{id}", h.GetMatter).Methods(http.MethodGet)
		api.HandleFunc("/matters/{id}", h.UpdateMatter).Methods(http.MethodPut)
		api.HandleFunc("/matters/{id}", h.DeleteMatter).Methods(http.MethodDelete)

		api.HandleFunc("/activity-types", h.ListActivityTypes).Methods(http.MethodGet)
		api.HandleFunc("/activity-types", h.CreateActivityType).Methods(http.MethodPost)
		api.HandleFunc("/activity-types/{id}", h.GetActivityType).Methods(http.MethodGet)
		api.HandleFunc("/activity-types/{id}", h.UpdateActivityType).Methods(http.MethodPut)
		api.HandleFunc("/activity-types/{id}", h.DeleteActivityType).Methods(http.MethodDelete)
	}

	if h := cfg.Rates; h != nil {
		api.HandleFunc("/rates/resolve", h.Resolve).Methods(http.MethodGet)
		api.HandleFunc("/rates", h.List).Methods(http.MethodGet)
		api.HandleFunc("/rates", h.Create).Methods(http.MethodPost)
		api.HandleFunc("/rates/{id}", h.Get).Methods(http.MethodGet)
		api.HandleFunc("/rates/{id}", h.Update).Methods(http.MethodPut)
		api.HandleFunc("/rates/{id}", h.Delete).Methods(http.MethodDelete)
	}

	if h := cfg.TimeEntries; h != nil {
		// Fixed paths are registered before /time-entries/{id}.
		api.HandleFunc("/time-entries/filter", h.Filter).Methods(http.MethodGet)
		api.HandleFunc("/time-entries/pending", h.ListPending).Methods(http.MethodGet)
		api.HandleFunc("/time-entries/report", h.Report).Methods(http.MethodGet)
		api.HandleFunc("/time-entries/report.xlsx", h.ExportReport).Methods(http.MethodGet)
		api.HandleFunc("/time-entries/recalculate-rates", h.RecalculateRates).Methods(http.MethodPost)
		api.HandleFunc("/time-entries/sync-to-calendar", h.SyncToCalendar).Methods(http.MethodPost)
		api.HandleFunc("/time-entries", h.ListOwn).Methods(http.MethodGet)
		api.HandleFunc("/time-entries", h.Create).Methods(http.MethodPost)
		api.HandleFunc("/time-entries/{id}", h.Get).Methods(http.MethodGet)
		api.HandleFunc("/time-entries/{id}", h.Update).Methods(http.MethodPut)
		api.HandleFunc("/time-entries/{id}", h.Delete).Methods(http.MethodDelete)
		api.HandleFunc("/time-entries/{id}/approve", h.Approve).Methods(http.MethodPatch, http.MethodPost)
	}

	if h := cfg.Calendar; h != nil {
		api.HandleFunc("/calendar/auth-url", h.AuthURL).Methods(http.MethodGet)
		api.HandleFunc("/calendar", h.Disconnect).Methods(http.MethodDelete)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	responder := newResponder(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable, err)
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

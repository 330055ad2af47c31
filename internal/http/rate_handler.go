package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/makarovada/legal-time/internal/application"
)

type rateService interface {
	Create(ctx context.Context, principal application.Principal, input application.RateInput) (application.Rate, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.RateInput) (application.Rate, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.Rate, error)
	List(ctx context.Context, principal application.Principal) ([]application.Rate, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
	Resolve(ctx context.Context, principal application.Principal, employeeID, matterID string) (application.Rate, error)
}

// RateHandler manages billing rates and exposes rate resolution.
type RateHandler struct {
	baseHandler
	service rateService
}

func NewRateHandler(service rateService, logger *slog.Logger) *RateHandler {
	return &RateHandler{baseHandler: newBaseHandler("RateHandler", logger), service: service}
}

func (h *RateHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	rates, err := h.service.List(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "List", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(rates, toRateDTO), err, "rate listing")
}

func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Get", err)
		return
	}
	principal := principalOf(r)
	rate, err := h.service.Get(r.Context(), principal, id)
	h.finish(w, r, h.log(r.Context(), "Get", "principal_id", principal.EmployeeID, "rate_id", id), http.StatusOK, toRateDTO(rate), err, "rate lookup")
}

func (h *RateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Create", err)
		return
	}
	principal := principalOf(r)
	rate, err := h.service.Create(r.Context(), principal, req.toInput())
	h.finish(w, r, h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "rate_id", rate.ID), http.StatusCreated, toRateDTO(rate), err, "rate creation")
}

func (h *RateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	principal := principalOf(r)
	rate, err := h.service.Update(r.Context(), principal, id, req.toInput())
	h.finish(w, r, h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "rate_id", id), http.StatusOK, toRateDTO(rate), err, "rate update")
}

func (h *RateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Delete", err)
		return
	}
	principal := principalOf(r)
	err = h.service.Delete(r.Context(), principal, id)
	h.finish(w, r, h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "rate_id", id), http.StatusNoContent, nil, err, "rate deletion")
}

// Resolve answers which rate a new entry by employee_id on matter_id would get.
func (h *RateHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	employeeID := strings.TrimSpace(query.Get("employee_id"))
	matterID := strings.TrimSpace(query.Get("matter_id"))
	principal := principalOf(r)
	if employeeID == "" {
		employeeID = principal.EmployeeID
	}
	logger := h.log(r.Context(), "Resolve", "principal_id", principal.EmployeeID, "employee_id", employeeID, "matter_id", matterID)

	rate, err := h.service.Resolve(r.Context(), principal, employeeID, matterID)
	h.finish(w, r, logger, http.StatusOK, toRateDTO(rate), err, "rate resolution")
}

type rateRequest struct {
	Value      float64 `json:"value"`
	EmployeeID string  `json:"employee_id"`
	ContractID string  `json:"contract_id"`
}

func (r rateRequest) toInput() application.RateInput {
	return application.RateInput{
		Value:      r.Value,
		EmployeeID: optionalString(r.EmployeeID),
		ContractID: optionalString(r.ContractID),
	}
}

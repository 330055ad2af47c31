package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/makarovada/legal-time/internal/application"
)

type employeeService interface {
	Create(ctx context.Context, principal application.Principal, input application.EmployeeInput) (application.Employee, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.EmployeeInput) (application.Employee, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.Employee, error)
	List(ctx context.Context, principal application.Principal) ([]application.Employee, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

// EmployeeHandler manages staff accounts.
type EmployeeHandler struct {
	baseHandler
	service employeeService
}

func NewEmployeeHandler(service employeeService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{baseHandler: newBaseHandler("EmployeeHandler", logger), service: service}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)
	employees, err := h.service.List(r.Context(), principal)
	h.finish(w, r, logger, http.StatusOK, mapAll(employees, toEmployeeDTO), err, "employee listing")
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Get", err)
		return
	}
	principal := principalOf(r)
	logger := h.log(r.Context(), "Get", "principal_id", principal.EmployeeID, "employee_id", id)
	employee, err := h.service.Get(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusOK, toEmployeeDTO(employee), err, "employee lookup")
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Create", err)
		return
	}
	principal := principalOf(r)
	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID)
	employee, err := h.service.Create(r.Context(), principal, req.toInput())
	h.finish(w, r, logger.With("employee_id", employee.ID), http.StatusCreated, toEmployeeDTO(employee), err, "employee creation")
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Update", err)
		return
	}
	principal := principalOf(r)
	logger := h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "employee_id", id)
	employee, err := h.service.Update(r.Context(), principal, id, req.toInput())
	h.finish(w, r, logger, http.StatusOK, toEmployeeDTO(employee), err, "employee update")
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, "Delete", err)
		return
	}
	principal := principalOf(r)
	logger := h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "employee_id", id)
	err = h.service.Delete(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusNoContent, nil, err, "employee deletion")
}

type employeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (r employeeRequest) toInput() application.EmployeeInput {
	return application.EmployeeInput{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Role:     strings.TrimSpace(r.Role),
		Password: r.Password,
	}
}

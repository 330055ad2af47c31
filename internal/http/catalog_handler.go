package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/makarovada/legal-time/internal/application"
)

type clientService interface {
	Create(ctx context.Context, principal application.Principal, input application.ClientInput) (application.Client, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.ClientInput) (application.Client, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.Client, error)
	List(ctx context.Context, principal application.Principal) ([]application.Client, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

type contractService interface {
	Create(ctx context.Context, principal application.Principal, input application.ContractInput) (application.Contract, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.ContractInput) (application.Contract, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.Contract, error)
	List(ctx context.Context, principal application.Principal) ([]application.Contract, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

type matterService interface {
	Create(ctx context.Context, principal application.Principal, input application.MatterInput) (application.Matter, error)
	Update(ctx context.Context, principal application.Principal, id string, input application.MatterInput) (application.Matter, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.Matter, error)
	List(ctx context.Context, principal application.Principal) ([]application.Matter, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

type activityTypeService interface {
	Create(ctx context.Context, principal application.Principal, name string) (application.ActivityType, error)
	Rename(ctx context.Context, principal application.Principal, id, name string) (application.ActivityType, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.ActivityType, error)
	List(ctx context.Context, principal application.Principal) ([]application.ActivityType, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

// CatalogHandler serves clients, contracts, matters and activity types.
type CatalogHandler struct {
	baseHandler
	clients    clientService
	contracts  contractService
	matters    matterService
	activities activityTypeService
}

func NewCatalogHandler(clients clientService, contracts contractService, matters matterService, activities activityTypeService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler("CatalogHandler", logger),
		clients:     clients,
		contracts:   contracts,
		matters:     matters,
		activities:  activities,
	}
}

// withID resolves the {id} path variable and a logger scoped to it.
func (h *CatalogHandler) withID(w http.ResponseWriter, r *http.Request, operation string) (string, application.Principal, *slog.Logger, bool) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, operation, err)
		return "", application.Principal{}, nil, false
	}
	principal := principalOf(r)
	return id, principal, h.log(r.Context(), operation, "principal_id", principal.EmployeeID, "resource_id", id), true
}

func (h *CatalogHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	clients, err := h.clients.List(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "ListClients", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(clients, toClientDTO), err, "client listing")
}

func (h *CatalogHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "GetClient")
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusOK, toClientDTO(client), err, "client lookup")
}

func (h *CatalogHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "CreateClient", err)
		return
	}
	principal := principalOf(r)
	client, err := h.clients.Create(r.Context(), principal, req.toInput())
	h.finish(w, r, h.log(r.Context(), "CreateClient", "principal_id", principal.EmployeeID, "client_id", client.ID), http.StatusCreated, toClientDTO(client), err, "client creation")
}

func (h *CatalogHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "UpdateClient")
	if !ok {
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "UpdateClient", err)
		return
	}
	client, err := h.clients.Update(r.Context(), principal, id, req.toInput())
	h.finish(w, r, logger, http.StatusOK, toClientDTO(client), err, "client update")
}

func (h *CatalogHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "DeleteClient")
	if !ok {
		return
	}
	err := h.clients.Delete(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusNoContent, nil, err, "client deletion")
}

func (h *CatalogHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	contracts, err := h.contracts.List(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "ListContracts", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(contracts, toContractDTO), err, "contract listing")
}

func (h *CatalogHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "GetContract")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusOK, toContractDTO(contract), err, "contract lookup")
}

func (h *CatalogHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "CreateContract", err)
		return
	}
	principal := principalOf(r)
	contract, err := h.contracts.Create(r.Context(), principal, req.toInput())
	h.finish(w, r, h.log(r.Context(), "CreateContract", "principal_id", principal.EmployeeID, "contract_id", contract.ID), http.StatusCreated, toContractDTO(contract), err, "contract creation")
}

func (h *CatalogHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "UpdateContract")
	if !ok {
		return
	}
	var req contractRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "UpdateContract", err)
		return
	}
	contract, err := h.contracts.Update(r.Context(), principal, id, req.toInput())
	h.finish(w, r, logger, http.StatusOK, toContractDTO(contract), err, "contract update")
}

func (h *CatalogHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "DeleteContract")
	if !ok {
		return
	}
	err := h.contracts.Delete(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusNoContent, nil, err, "contract deletion")
}

func (h *CatalogHandler) ListMatters(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	matters, err := h.matters.List(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "ListMatters", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(matters, toMatterDTO), err, "matter listing")
}

func (h *CatalogHandler) GetMatter(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "GetMatter")
	if !ok {
		return
	}
	matter, err := h.matters.Get(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusOK, toMatterDTO(matter), err, "matter lookup")
}

func (h *CatalogHandler) CreateMatter(w http.ResponseWriter, r *http.Request) {
	var req matterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "CreateMatter", err)
		return
	}
	principal := principalOf(r)
	matter, err := h.matters.Create(r.Context(), principal, req.toInput())
	h.finish(w, r, h.log(r.Context(), "CreateMatter", "principal_id", principal.EmployeeID, "matter_id", matter.ID), http.StatusCreated, toMatterDTO(matter), err, "matter creation")
}

func (h *CatalogHandler) UpdateMatter(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "UpdateMatter")
	if !ok {
		return
	}
	var req matterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "UpdateMatter", err)
		return
	}
	matter, err := h.matters.Update(r.Context(), principal, id, req.toInput())
	h.finish(w, r, logger, http.StatusOK, toMatterDTO(matter), err, "matter update")
}

func (h *CatalogHandler) DeleteMatter(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "DeleteMatter")
	if !ok {
		return
	}
	err := h.matters.Delete(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusNoContent, nil, err, "matter deletion")
}

func (h *CatalogHandler) ListActivityTypes(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	activities, err := h.activities.List(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "ListActivityTypes", "principal_id", principal.EmployeeID), http.StatusOK, mapAll(activities, toActivityTypeDTO), err, "activity type listing")
}

func (h *CatalogHandler) GetActivityType(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "GetActivityType")
	if !ok {
		return
	}
	activity, err := h.activities.Get(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusOK, toActivityTypeDTO(activity), err, "activity type lookup")
}

func (h *CatalogHandler) CreateActivityType(w http.ResponseWriter, r *http.Request) {
	var req activityTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "CreateActivityType", err)
		return
	}
	principal := principalOf(r)
	activity, err := h.activities.Create(r.Context(), principal, strings.TrimSpace(req.Name))
	h.finish(w, r, h.log(r.Context(), "CreateActivityType", "principal_id", principal.EmployeeID, "activity_type_id", activity.ID), http.StatusCreated, toActivityTypeDTO(activity), err, "activity type creation")
}

func (h *CatalogHandler) UpdateActivityType(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "UpdateActivityType")
	if !ok {
		return
	}
	var req activityTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "UpdateActivityType", err)
		return
	}
	activity, err := h.activities.Rename(r.Context(), principal, id, strings.TrimSpace(req.Name))
	h.finish(w, r, logger, http.StatusOK, toActivityTypeDTO(activity), err, "activity type update")
}

func (h *CatalogHandler) DeleteActivityType(w http.ResponseWriter, r *http.Request) {
	id, principal, logger, ok := h.withID(w, r, "DeleteActivityType")
	if !ok {
		return
	}
	err := h.activities.Delete(r.Context(), principal, id)
	h.finish(w, r, logger, http.StatusNoContent, nil, err, "activity type deletion")
}

type clientRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (r clientRequest) toInput() application.ClientInput {
	return application.ClientInput{Name: strings.TrimSpace(r.Name), Type: strings.TrimSpace(r.Type)}
}

type contractRequest struct {
	ClientID string `json:"client_id"`
	Number   string `json:"number"`
	Date     string `json:"date"`
}

func (r contractRequest) toInput() application.ContractInput {
	return application.ContractInput{ClientID: strings.TrimSpace(r.ClientID), Number: strings.TrimSpace(r.Number), Date: strings.TrimSpace(r.Date)}
}

type matterRequest struct {
	ContractID  string `json:"contract_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r matterRequest) toInput() application.MatterInput {
	return application.MatterInput{
		ContractID:  strings.TrimSpace(r.ContractID),
		Code:        strings.TrimSpace(r.Code),
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
	}
}

type activityTypeRequest struct {
	Name string `json:"name"`
}

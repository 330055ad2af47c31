package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/makarovada/legal-time/internal/application"
)

type authService interface {
	Login(ctx context.Context, email, password string) (application.LoginResult, error)
	Me(ctx context.Context, principal application.Principal) (application.Employee, error)
}

// AuthHandler serves password login and the caller's profile.
type AuthHandler struct {
	baseHandler
	service authService
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{baseHandler: newBaseHandler("AuthHandler", logger), service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, "Login", err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.service.Login(r.Context(), email, req.Password)
	if err != nil {
		logger.ErrorContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("employee_id", result.Employee.ID).InfoContext(r.Context(), "employee authenticated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt.UTC().Format(time.RFC3339),
		Employee:    toEmployeeDTO(result.Employee),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	logger := h.log(r.Context(), "Me", "principal_id", principal.EmployeeID)

	employee, err := h.service.Me(r.Context(), principal)
	h.finish(w, r, logger, http.StatusOK, toEmployeeDTO(employee), err, "profile lookup")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   string      `json:"expires_at"`
	Employee    employeeDTO `json:"employee"`
}

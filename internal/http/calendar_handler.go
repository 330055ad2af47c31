package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/makarovada/legal-time/internal/application"
)

type calendarService interface {
	AuthURL(ctx context.Context, principal application.Principal) (string, error)
	Connect(ctx context.Context, state, code string) (application.Employee, error)
	Disconnect(ctx context.Context, principal application.Principal) error
}

// CalendarHandler links and unlinks an employee's external calendar.
type CalendarHandler struct {
	baseHandler
	service calendarService
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{baseHandler: newBaseHandler("CalendarHandler", logger), service: service}
}

func (h *CalendarHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	url, err := h.service.AuthURL(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "AuthURL", "principal_id", principal.EmployeeID), http.StatusOK, authURLResponse{AuthURL: url}, err, "calendar auth url")
}

// Callback is the OAuth redirect target. The caller is identified by the
// signed state, so the route is unauthenticated.
func (h *CalendarHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		h.log(r.Context(), "Callback", "error_kind", "consent_denied").WarnContext(r.Context(), "calendar consent denied", "reason", reason)
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{ErrorCode: "CONSENT_DENIED", Message: reason})
		return
	}

	employee, err := h.service.Connect(r.Context(), query.Get("state"), query.Get("code"))
	h.finish(w, r, h.log(r.Context(), "Callback", "employee_id", employee.ID), http.StatusOK, toEmployeeDTO(employee), err, "calendar connect")
}

func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	principal := principalOf(r)
	err := h.service.Disconnect(r.Context(), principal)
	h.finish(w, r, h.log(r.Context(), "Disconnect", "principal_id", principal.EmployeeID), http.StatusNoContent, nil, err, "calendar disconnect")
}

type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}

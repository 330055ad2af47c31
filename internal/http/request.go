package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/makarovada/legal-time/internal/application"
)

const dateLayout = "2006-01-02"

// baseHandler carries what every resource handler shares.
type baseHandler struct {
	name      string
	responder responder
	logger    *slog.Logger
}

func newBaseHandler(name string, logger *slog.Logger) baseHandler {
	base := defaultLogger(logger)
	return baseHandler{name: name, responder: newResponder(base), logger: base}
}

func (h baseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, h.name, operation, attrs...)
}

// finish writes payload on success or maps err to a status code.
func (h baseHandler) finish(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, payload any, err error, message string) {
	if err != nil {
		logger.ErrorContext(r.Context(), message+" failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), message+" succeeded")
	h.responder.writeJSON(r.Context(), w, status, payload)
}

func (h baseHandler) badRequest(w http.ResponseWriter, r *http.Request, operation string, err error) {
	h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "rejected malformed request", "error", err)
	h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{ErrorCode: "BAD_REQUEST", Message: err.Error()})
}

func principalOf(r *http.Request) application.Principal {
	principal, _ := PrincipalFromContext(r.Context())
	return principal
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		return "", errMissingResource
	}
	return id, nil
}

func queryPage(r *http.Request) (application.Page, error) {
	var page application.Page
	query := r.URL.Query()
	for key, target := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := strings.TrimSpace(query.Get(key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return application.Page{}, fmt.Errorf("%w: %s", errInvalidQuery, key)
		}
		*target = n
	}
	return page, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

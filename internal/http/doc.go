// Package http exposes the time tracking API over JSON.
//
// Public endpoints:
//   - POST /auth/login: body {"email","password"}; responds with
//     {"access_token","token_type","expires_at","employee"}.
//   - GET /calendar/callback: OAuth redirect target carrying state and code.
//   - GET /healthz, GET /metrics.
//
// Every other endpoint requires "Authorization: Bearer <token>":
//   - GET /auth/me
//   - /employees, /clients, /contracts, /matters, /activity-types, /rates:
//     GET and POST on the collection, GET, PUT and DELETE on /{id}.
//   - GET /rates/resolve?employee_id=&matter_id=
//   - GET and POST /time-entries; GET /time-entries/filter and /pending;
//     GET, PUT and DELETE /time-entries/{id}; PATCH or POST
//     /time-entries/{id}/approve; POST /time-entries/recalculate-rates;
//     GET /time-entries/report and /report.xlsx; POST
//     /time-entries/sync-to-calendar.
//   - GET /calendar/auth-url, DELETE /calendar.
//
// Service errors map to 404, 403, 409, 422 and 401; malformed bodies and
// query parameters map to 400. Error bodies are
// {"error_code","message","errors"}.
package http

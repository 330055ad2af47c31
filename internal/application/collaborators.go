package application

import (
	"context"
	"time"

	"github.com/makarovada/legal-time/internal/access"
)

// CalendarSync mirrors time entries into an employee's external calendar.
// Implementations are best effort: callers log and count failures and never
// surface them.
type CalendarSync interface {
	PushEvent(ctx context.Context, owner Employee, entry TimeEntry, matter Matter, activity ActivityType) (string, error)
	UpdateEvent(ctx context.Context, owner Employee, entry TimeEntry, matter Matter, activity ActivityType, handle string) (string, error)
	DeleteEvent(ctx context.Context, owner Employee, handle string) error
}

// NoopCalendar is wired when calendar integration is disabled.
type NoopCalendar struct{}

func (NoopCalendar) PushEvent(context.Context, Employee, TimeEntry, Matter, ActivityType) (string, error) {
	return "", nil
}

func (NoopCalendar) UpdateEvent(_ context.Context, _ Employee, _ TimeEntry, _ Matter, _ ActivityType, handle string) (string, error) {
	return handle, nil
}

func (NoopCalendar) DeleteEvent(context.Context, Employee, string) error { return nil }

// CalendarLinker performs the OAuth handshake with the calendar provider.
// Exchange returns the credential already sealed for storage.
type CalendarLinker interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) ([]byte, error)
}

// StateCodec binds an OAuth round trip to the employee who started it.
type StateCodec interface {
	IssueState(employeeID string) (string, error)
	ParseState(state string) (string, error)
}

// TokenIssuer issues and validates bearer tokens.
type TokenIssuer interface {
	IssueToken(employeeID string, role access.Role) (string, time.Time, error)
	ParseToken(token string) (string, error)
}

// ReportRenderer turns report rows into a downloadable document.
type ReportRenderer interface {
	Render(rows []ReportRow) ([]byte, error)
}

// Metrics receives operation outcomes. Outcome is "success" or an ErrorKind label.
type Metrics interface {
	ObserveTimeEntryOperation(operation, outcome string)
	ObserveCalendarSync(operation, outcome string)
	ObserveRateRecalculation(examined, updated int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTimeEntryOperation(string, string) {}
func (noopMetrics) ObserveCalendarSync(string, string)       {}
func (noopMetrics) ObserveRateRecalculation(int, int)        {}

func defaultMetrics(m Metrics) Metrics {
	if m != nil {
		return m
	}
	return noopMetrics{}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return ErrorKind(err)
}

package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/makarovada/legal-time/internal/application"
)

const (
	primaryCalendar = "primary"
	eventTimeZone   = "UTC"
)

// buildEvent renders a time entry as a calendar event starting at midnight
// UTC of the entry date and lasting the logged hours.
func buildEvent(entry application.TimeEntry, matter application.Matter, activity application.ActivityType) *calendar.Event {
	summary := fmt.Sprintf("%s - %s", matter.Code, matter.Name)
	if activity.Name != "" {
		summary += fmt.Sprintf(" (%s)", activity.Name)
	}

	var description strings.Builder
	fmt.Fprintf(&description, "Hours: %s\n", strconv.FormatFloat(entry.Hours, 'f', -1, 64))
	if entry.Description != "" {
		fmt.Fprintf(&description, "Description: %s\n", entry.Description)
	}
	fmt.Fprintf(&description, "Status: %s", entry.Status)

	d := entry.Date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(entry.Hours * float64(time.Hour)))

	return &calendar.Event{
		Summary:     summary,
		Description: description.String(),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: eventTimeZone},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: eventTimeZone},
	}
}

func calendarID(owner application.Employee) string {
	if owner.CalendarID != "" {
		return owner.CalendarID
	}
	return primaryCalendar
}

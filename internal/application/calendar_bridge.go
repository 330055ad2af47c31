package application

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCalendarTimeout bounds a single calendar provider call.
const DefaultCalendarTimeout = 10 * time.Second

type syncOutcome int

const (
	syncSkipped syncOutcome = iota
	syncDone
	syncFailed
)

// calendarBridge runs best effort calendar calls for lifecycle operations.
// Failures are logged with error_kind=external_sync, counted, and dropped.
type calendarBridge struct {
	sync       CalendarSync
	employees  EmployeeRepository
	matters    MatterRepository
	activities ActivityTypeRepository
	entries    TimeEntryRepository
	metrics    Metrics
	timeout    time.Duration
}

func (b *calendarBridge) enabled() bool {
	return b != nil && b.sync != nil && b.employees != nil && b.entries != nil
}

func (b *calendarBridge) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = DefaultCalendarTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// upsert updates the event behind entry, or pushes a new one when the entry
// has no handle and pushIfMissing is set. The returned entry carries the
// recorded handle.
func (b *calendarBridge) upsert(ctx context.Context, logger *slog.Logger, entry TimeEntry, pushIfMissing bool) (TimeEntry, syncOutcome) {
	if !b.enabled() {
		return entry, syncSkipped
	}
	hasHandle := entry.HasCalendarEvent()
	if !hasHandle && !pushIfMissing {
		return entry, syncSkipped
	}

	operation := "push"
	if hasHandle {
		operation = "update"
	}

	owner, err := b.employees.GetEmployee(ctx, entry.EmployeeID)
	if err != nil {
		b.fail(ctx, logger, operation, entry.ID, err)
		return entry, syncFailed
	}
	if !owner.CalendarConnected() {
		return entry, syncSkipped
	}

	matter, activity, err := b.payload(ctx, entry)
	if err != nil {
		b.fail(ctx, logger, operation, entry.ID, err)
		return entry, syncFailed
	}

	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	var handle string
	if hasHandle {
		handle, err = b.sync.UpdateEvent(callCtx, owner, entry, matter, activity, *entry.CalendarEventID)
	} else {
		handle, err = b.sync.PushEvent(callCtx, owner, entry, matter, activity)
	}
	if err != nil {
		b.fail(ctx, logger, operation, entry.ID, err)
		return entry, syncFailed
	}

	if handle != "" && (!hasHandle || handle != *entry.CalendarEventID) {
		if err := b.entries.SetCalendarEventID(ctx, entry.ID, &handle); err != nil {
			b.fail(ctx, logger, operation, entry.ID, err)
			return entry, syncFailed
		}
		entry.CalendarEventID = &handle
	}

	b.metrics.ObserveCalendarSync(operation, "success")
	return entry, syncDone
}

// remove deletes the event behind entry, if any.
func (b *calendarBridge) remove(ctx context.Context, logger *slog.Logger, entry TimeEntry) syncOutcome {
	if !b.enabled() || !entry.HasCalendarEvent() {
		return syncSkipped
	}

	owner, err := b.employees.GetEmployee(ctx, entry.EmployeeID)
	if err != nil {
		b.fail(ctx, logger, "delete", entry.ID, err)
		return syncFailed
	}
	if !owner.CalendarConnected() {
		return syncSkipped
	}

	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	if err := b.sync.DeleteEvent(callCtx, owner, *entry.CalendarEventID); err != nil {
		b.fail(ctx, logger, "delete", entry.ID, err)
		return syncFailed
	}
	b.metrics.ObserveCalendarSync("delete", "success")
	return syncDone
}

func (b *calendarBridge) payload(ctx context.Context, entry TimeEntry) (Matter, ActivityType, error) {
	var (
		matter   Matter
		activity ActivityType
		err      error
	)
	if b.matters != nil {
		if matter, err = b.matters.GetMatter(ctx, entry.MatterID); err != nil {
			return Matter{}, ActivityType{}, err
		}
	}
	if b.activities != nil {
		if activity, err = b.activities.GetActivityType(ctx, entry.ActivityTypeID); err != nil {
			return Matter{}, ActivityType{}, err
		}
	}
	return matter, activity, nil
}

func (b *calendarBridge) fail(ctx context.Context, logger *slog.Logger, operation, entryID string, err error) {
	logger.WarnContext(ctx, "calendar sync failed",
		"calendar_operation", operation,
		"time_entry_id", entryID,
		"error", err,
		"error_kind", externalSyncKind,
	)
	b.metrics.ObserveCalendarSync(operation, externalSyncKind)
}

package repository

import (
	"context"
	"time"

	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/persistence"
)

func (s *Store) CreateRate(ctx context.Context, rate application.Rate) (application.Rate, error) {
	if err := s.backend.CreateRate(ctx, persistence.Rate(rate)); err != nil {
		return application.Rate{}, err
	}
	return s.GetRate(ctx, rate.ID)
}

func (s *Store) UpdateRate(ctx context.Context, rate application.Rate) (application.Rate, error) {
	if err := s.backend.UpdateRate(ctx, persistence.Rate(rate)); err != nil {
		return application.Rate{}, err
	}
	return s.GetRate(ctx, rate.ID)
}

func (s *Store) GetRate(ctx context.Context, id string) (application.Rate, error) {
	return wrapRate(s.backend.GetRate(ctx, id))
}

func (s *Store) ListRates(ctx context.Context) ([]application.Rate, error) {
	models, err := s.backend.ListRates(ctx)
	if err != nil {
		return nil, err
	}
	return convertAll(models, func(r persistence.Rate) application.Rate { return application.Rate(r) }), nil
}

func (s *Store) DeleteRate(ctx context.Context, id string) error {
	return s.backend.DeleteRate(ctx, id)
}

func (s *Store) FindContractRate(ctx context.Context, contractID string) (application.Rate, error) {
	return wrapRate(s.backend.FindContractRate(ctx, contractID))
}

func (s *Store) FindEmployeeRate(ctx context.Context, employeeID string) (application.Rate, error) {
	return wrapRate(s.backend.FindEmployeeRate(ctx, employeeID))
}

func (s *Store) GetOrCreateDefaultRate(ctx context.Context, candidate application.Rate) (application.Rate, error) {
	return wrapRate(s.backend.GetOrCreateDefaultRate(ctx, persistence.Rate(candidate)))
}

func wrapRate(rate persistence.Rate, err error) (application.Rate, error) {
	if err != nil {
		return application.Rate{}, err
	}
	return application.Rate(rate), nil
}

func (s *Store) CreateTimeEntry(ctx context.Context, entry application.TimeEntry) (application.TimeEntry, error) {
	if err := s.backend.CreateTimeEntry(ctx, toPersistenceTimeEntry(entry)); err != nil {
		return application.TimeEntry{}, err
	}
	return s.GetTimeEntry(ctx, entry.ID)
}

func (s *Store) UpdateTimeEntry(ctx context.Context, entry application.TimeEntry) (application.TimeEntry, error) {
	if err := s.backend.UpdateTimeEntry(ctx, toPersistenceTimeEntry(entry)); err != nil {
		return application.TimeEntry{}, err
	}
	return s.GetTimeEntry(ctx, entry.ID)
}

func (s *Store) GetTimeEntry(ctx context.Context, id string) (application.TimeEntry, error) {
	stored, err := s.backend.GetTimeEntry(ctx, id)
	if err != nil {
		return application.TimeEntry{}, err
	}
	return toApplicationTimeEntry(stored), nil
}

func (s *Store) ListTimeEntries(ctx context.Context, query application.TimeEntryQuery) ([]application.TimeEntry, error) {
	models, err := s.backend.ListTimeEntries(ctx, persistence.TimeEntryFilter{
		EmployeeID: query.EmployeeID,
		Status:     string(query.Status),
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		Unsynced:   query.Unsynced,
		Limit:      query.Page.Limit,
		Offset:     query.Page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return convertAll(models, toApplicationTimeEntry), nil
}

func (s *Store) DeleteTimeEntry(ctx context.Context, id string) error {
	return s.backend.DeleteTimeEntry(ctx, id)
}

func (s *Store) SetTimeEntryRate(ctx context.Context, id string, rateID *string, updatedAt time.Time) error {
	return s.backend.SetTimeEntryRate(ctx, id, rateID, updatedAt)
}

func (s *Store) SetCalendarEventID(ctx context.Context, id string, eventID *string) error {
	return s.backend.SetCalendarEventID(ctx, id, eventID)
}

func (s *Store) Report(ctx context.Context, query application.ReportQuery) ([]application.ReportRow, error) {
	rows, err := s.backend.Report(ctx, persistence.ReportFilter(query))
	if err != nil {
		return nil, err
	}
	return convertAll(rows, toApplicationReportRow), nil
}

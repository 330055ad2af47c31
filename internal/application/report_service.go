package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/makarovada/legal-time/internal/access"
)

// ReportService builds billing reports over approved time entries.
type ReportService struct {
	source   ReportSource
	renderer ReportRenderer
	logger   *slog.Logger
}

// NewReportService constructs a report service. renderer may be nil when
// export is not needed.
func NewReportService(source ReportSource, renderer ReportRenderer) *ReportService {
	return NewReportServiceWithLogger(source, renderer, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified logger.
func NewReportServiceWithLogger(source ReportSource, renderer ReportRenderer, logger *slog.Logger) *ReportService {
	return &ReportService{source: source, renderer: renderer, logger: defaultLogger(logger)}
}

// Report returns approved entries matching filter, ordered by date then
// insertion order. Amount is hours times the rate, or zero without a rate.
func (s *ReportService) Report(ctx context.Context, principal Principal, filter ReportFilter) (rows []ReportRow, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if s.source == nil {
		err = fmt.Errorf("report source not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "ReportService", "Report", "principal_id", principal.EmployeeID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rows)).InfoContext(ctx, "report built")
	}()

	if err = checkAccess(principal, access.ReportTimeEntry, false); err != nil {
		return
	}

	rows, err = s.source.Report(ctx, ReportQuery{
		EmployeeID: strings.TrimSpace(filter.EmployeeID),
		MatterID:   strings.TrimSpace(filter.MatterID),
		ContractID: strings.TrimSpace(filter.ContractID),
		ClientID:   strings.TrimSpace(filter.ClientID),
		StartDate:  parseOptionalDate(filter.StartDate),
		EndDate:    parseOptionalDate(filter.EndDate),
	})
	if err != nil {
		err = mapRepoError(err, "", "")
		return
	}

	for i := range rows {
		rows[i].Amount = 0
		if rows[i].RateValue != nil {
			rows[i].Amount = rows[i].Hours * *rows[i].RateValue
		}
	}
	return
}

// Export renders the report for filter as a spreadsheet.
func (s *ReportService) Export(ctx context.Context, principal Principal, filter ReportFilter) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("ReportService is nil")
	}
	if s.renderer == nil {
		return nil, fmt.Errorf("report renderer not configured")
	}

	rows, err := s.Report(ctx, principal, filter)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Render(rows)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return data, nil
}

// Package export renders billing reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/makarovada/legal-time/internal/application"
)

// ContentType is the media type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetName     = "Time report"
	maxColumnWide = 50
)

var headers = []string{
	"Date", "Employee", "Client", "Contract", "Matter", "Activity type",
	"Hours", "Rate", "Amount", "Status", "Description",
}

// XLSXRenderer implements application.ReportRenderer with excelize.
type XLSXRenderer struct{}

var _ application.ReportRenderer = XLSXRenderer{}

// Render writes a header row followed by one row per report row.
func (XLSXRenderer) Render(rows []application.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(headers))
	if err := writeRow(f, 1, toCells(headers), widths); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, i+2, reportCells(row), widths); err != nil {
			return nil, err
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, float64(min(width+2, maxColumnWide))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func reportCells(row application.ReportRow) []any {
	var rate any
	if row.RateValue != nil {
		rate = *row.RateValue
	}
	return []any{
		row.Date.Format("2006-01-02"),
		row.EmployeeName,
		row.ClientName,
		row.ContractNumber,
		fmt.Sprintf("%s - %s", row.MatterCode, row.MatterName),
		row.ActivityTypeName,
		row.Hours,
		rate,
		row.Amount,
		string(row.Status),
		row.Description,
	}
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeRow(f *excelize.File, rowNumber int, cells []any, widths []int) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNumber, err)
	}
	for i, value := range cells {
		if value == nil {
			continue
		}
		if n := len(fmt.Sprint(value)); n > widths[i] {
			widths[i] = n
		}
	}
	return nil
}

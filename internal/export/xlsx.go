// Package export renders batch extraction results as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/instant-receipts/extraction/internal/extract"
)

// Row is one processed receipt: the source file plus its extraction result.
type Row struct {
	File   string
	Result extract.Result
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns an XLSX workbook (as bytes) with one row per processed
// receipt. Absent fields render as empty cells.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"File",
		"Merchant",
		"Date",
		"Total",
		"Tax",
		"Currency",
		"Confidence",
		"Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		values := []any{
			r.File,
			strOrEmpty(r.Result.Merchant),
			strOrEmpty(r.Result.Date),
			numOrEmpty(r.Result.Total),
			numOrEmpty(r.Result.Tax),
			r.Result.Currency,
			r.Result.Confidence,
			r.Result.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func strOrEmpty(p *string) any {
	if p == nil {
		return ""
	}
	return *p
}

func numOrEmpty(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

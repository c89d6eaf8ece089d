// Package export renders estimates into spreadsheet form.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ostegm/contractor-app/pkg/project"
)

// Service produces XLSX bytes for estimate exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportEstimateXLSX returns an XLSX workbook (as bytes) for the given
// estimate: a line-item sheet followed by a summary sheet with totals,
// considerations, risks and next steps.
func (s *Service) ExportEstimateXLSX(est project.Estimate) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const itemsSheet = "Estimate Items"
	if index, _ := f.GetSheetIndex(itemsSheet); index == -1 {
		if _, err := f.NewSheet(itemsSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(itemsSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Description",
		"Category",
		"Subcategory",
		"Cost Min",
		"Cost Max",
		"Unit",
		"Quantity",
		"Assumptions",
		"Confidence",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itemsSheet, cell, h)
	}

	row := 2
	for _, item := range est.EstimateItems {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(itemsSheet, cell, v)
		}
		write(1, item.Description)
		write(2, item.Category)
		write(3, item.Subcategory)
		write(4, item.CostRangeMin)
		write(5, item.CostRangeMax)
		write(6, item.Unit)
		if item.Quantity != 0 {
			write(7, item.Quantity)
		}
		write(8, truncate(item.Assumptions, 140))
		write(9, item.ConfidenceScore)
		write(10, truncate(item.Notes, 140))
		row++
	}

	_ = f.SetColWidth(itemsSheet, "A", "A", 42) // description
	_ = f.SetColWidth(itemsSheet, "B", "C", 18) // category
	_ = f.SetColWidth(itemsSheet, "D", "E", 12) // costs
	_ = f.SetColWidth(itemsSheet, "H", "H", 48) // assumptions
	_ = f.SetColWidth(itemsSheet, "J", "J", 48) // notes

	if err := s.writeSummarySheet(f, est); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"items", len(est.EstimateItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummarySheet(f *excelize.File, est project.Estimate) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	row := 1
	writePair := func(label string, v any) {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, labelCell, label)
		_ = f.SetCellValue(sheet, valueCell, v)
		row++
	}
	writeList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		row++
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, labelCell, label)
		row++
		for _, item := range items {
			cell, _ := excelize.CoordinatesToCellName(2, row)
			_ = f.SetCellValue(sheet, cell, item)
			row++
		}
	}

	writePair("Project", est.ProjectDescription)
	writePair("Estimated Total (Min)", est.EstimatedTotalMin)
	writePair("Estimated Total (Max)", est.EstimatedTotalMax)
	if est.EstimatedTimelineDays != 0 {
		writePair("Timeline (Days)", est.EstimatedTimelineDays)
	}
	writePair("Confidence", string(est.ConfidenceLevel))

	writeList("Key Considerations", est.KeyConsiderations)
	writeList("Key Risks", est.KeyRisks)
	writeList("Missing Information", est.MissingInformation)
	writeList("Next Steps", est.NextSteps)

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "B", 80)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	summarySheet = "Summary"
	quotesSheet  = "Quotes"
)

// Write renders the report as a workbook with a per-tag summary sheet and
// one row per quote on a second sheet.
func Write(w io.Writer, report domain.ExportReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(quotesSheet); err != nil {
		return fmt.Errorf("create quotes sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, report, header); err != nil {
		return err
	}
	if err := writeQuotes(f, report, header); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report domain.ExportReport, header int) error {
	rows := [][]any{
		{"Document", report.Document},
		{"Analyzed at", report.AnalyzedAt.UTC().Format(time.RFC3339)},
		{"Total quotes", report.TotalQuotes()},
		{},
		{"Tag", "Description", "Quotes found"},
	}
	for _, tag := range report.Tags {
		rows = append(rows, []any{tag.Name, tag.Description, tag.QuotesFound})
	}
	if err := setRows(f, summarySheet, rows); err != nil {
		return err
	}

	if err := f.SetCellStyle(summarySheet, "A1", "A3", header); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A5", "C5", header); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return fmt.Errorf("size summary: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		return fmt.Errorf("size summary: %w", err)
	}
	return nil
}

func writeQuotes(f *excelize.File, report domain.ExportReport, header int) error {
	rows := [][]any{{"Tag", "#", "Quote"}}
	for _, tag := range report.Tags {
		for i, quote := range tag.Quotes {
			rows = append(rows, []any{tag.Name, i + 1, quote})
		}
	}
	if err := setRows(f, quotesSheet, rows); err != nil {
		return err
	}

	if err := f.SetCellStyle(quotesSheet, "A1", "C1", header); err != nil {
		return fmt.Errorf("style quotes: %w", err)
	}
	if err := f.SetColWidth(quotesSheet, "C", "C", 100); err != nil {
		return fmt.Errorf("size quotes: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

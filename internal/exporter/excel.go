package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bikepulse/pkg/contracts/domain"
)

// SummarySheet holds the headline metrics and range of the workbook.
const SummarySheet = "Summary"

// ExcelExporter writes the dashboard as one workbook with a sheet per view.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates an Excel exporter
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger.With(slog.String("component", "excel_exporter"))}
}

// SheetName is the worksheet name for a view, e.g. "Seasonal".
func SheetName(view domain.ViewID) string {
	s := string(view)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Export saves the workbook to path.
func (e *ExcelExporter) Export(path string, vm *domain.ViewModel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := e.build(vm)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Excel export complete",
		slog.String("path", path),
		slog.Int("records", vm.Range.RecordCount))
	return nil
}

// Write streams the workbook, such as into an HTTP response.
func (e *ExcelExporter) Write(w io.Writer, vm *domain.ViewModel) error {
	f, err := e.build(vm)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) build(vm *domain.ViewModel) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       vm.Header,
		Description: vm.Caption,
		Creator:     vm.Header,
		Created:     time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := e.writeSummary(f, vm, bold); err != nil {
		f.Close()
		return nil, err
	}

	for _, view := range ExportOrder {
		if err := e.writeView(f, vm, view, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", view, err)
		}
	}

	return f, nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, vm *domain.ViewModel, headerStyle int) error {
	rows := [][]interface{}{
		{vm.Header},
		{vm.Caption},
		{},
		{"Start", formatDate(vm.Range.Start)},
		{"End", formatDate(vm.Range.End)},
		{"Records", vm.Range.RecordCount},
		{},
		{"Metric", "Value"},
	}
	for _, m := range vm.Headline() {
		rows = append(rows, []interface{}{m.Label, cellValue(m.Raw)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(SummarySheet, "A1", "A1", headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A8", "B8", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "B", 22)
}

func (e *ExcelExporter) writeView(f *excelize.File, vm *domain.ViewModel, view domain.ViewID, headerStyle int) error {
	table, err := BuildTable(vm.Tables, view)
	if err != nil {
		return err
	}

	sheet := SheetName(view)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &table.Headers); err != nil {
		return err
	}
	for i := range table.Cells {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &table.Cells[i]); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(table.Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 15)
}

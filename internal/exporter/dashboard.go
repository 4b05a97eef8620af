package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"bikepulse/pkg/contracts/domain"
)

// ErrUnknownView is returned when exporting a view outside the fixed set.
var ErrUnknownView = errors.New("unknown view")

// ExportOrder is the order in which summary tables are written.
var ExportOrder = []domain.ViewID{
	domain.ViewDaily,
	domain.ViewSeasonal,
	domain.ViewYearly,
	domain.ViewHoliday,
	domain.ViewWeekday,
}

// CSVExporter writes the dashboard summary tables as CSV files.
type CSVExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter(logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{
		writer: NewCSVWriter(logger),
		logger: logger.With(slog.String("component", "csv_exporter")),
	}
}

// Export writes one file per summary table into dir and returns the paths
// in ExportOrder.
func (e *CSVExporter) Export(dir string, vm *domain.ViewModel) ([]string, error) {
	paths := make([]string, 0, len(ExportOrder))

	for _, view := range ExportOrder {
		table, err := BuildTable(vm.Tables, view)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, FileName(view))
		if err := e.writer.WriteSimpleCSV(path, table.Headers, table.Records); err != nil {
			return paths, fmt.Errorf("export %s: %w", view, err)
		}
		paths = append(paths, path)
	}

	e.logger.Info("CSV export complete",
		slog.String("dir", dir),
		slog.Int("files", len(paths)),
		slog.Int("records", vm.Range.RecordCount))

	return paths, nil
}

// WriteView streams a single summary table as CSV.
func (e *CSVExporter) WriteView(w io.Writer, vm *domain.ViewModel, view domain.ViewID) error {
	table, err := BuildTable(vm.Tables, view)
	if err != nil {
		return err
	}
	return e.writer.Encode(w, WriteOptions{
		Headers:   table.Headers,
		Records:   table.Records,
		BOMPrefix: true,
	})
}

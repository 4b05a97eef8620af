package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"bikepulse/pkg/contracts/domain"
)

// Format is an export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// File names used by ReportWriter.
const (
	WorkbookFileName = "dashboard.xlsx"
	JSONFileName     = "dashboard.json"
)

// ErrUnsupportedFormat is returned by ParseFormats for unknown names.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormats parses a comma separated list such as "csv,xlsx". Duplicates
// are dropped and order is kept.
func ParseFormats(list string) ([]Format, error) {
	var (
		out  []Format
		seen = make(map[Format]bool)
	)
	for _, part := range strings.Split(list, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		switch f {
		case FormatCSV, FormatXLSX, FormatJSON:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty format list", ErrUnsupportedFormat)
	}
	return out, nil
}

// EncodeJSON writes the view model as indented JSON, including the raw
// summary tables.
func EncodeJSON(w io.Writer, vm *domain.ViewModel) error {
	doc := struct {
		*domain.ViewModel
		Tables domain.SummaryTables `json:"tables"`
	}{vm, vm.Tables}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReportWriter writes a rendered dashboard in several formats at once.
type ReportWriter struct {
	csv    *CSVExporter
	excel  *ExcelExporter
	logger *slog.Logger
}

// NewReportWriter creates a report writer
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		csv:    NewCSVExporter(logger),
		excel:  NewExcelExporter(logger),
		logger: logger.With(slog.String("component", "report_writer")),
	}
}

// Write exports vm into dir in every requested format concurrently and
// returns the files written. The first failure cancels the rest.
func (r *ReportWriter) Write(ctx context.Context, dir string, vm *domain.ViewModel, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([][]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)

	for i, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			switch format {
			case FormatCSV:
				paths, err := r.csv.Export(dir, vm)
				if err != nil {
					return err
				}
				results[i] = paths
			case FormatXLSX:
				path := filepath.Join(dir, WorkbookFileName)
				if err := r.excel.Export(path, vm); err != nil {
					return err
				}
				results[i] = []string{path}
			case FormatJSON:
				path := filepath.Join(dir, JSONFileName)
				if err := writeJSONFile(path, vm); err != nil {
					return err
				}
				results[i] = []string{path}
			default:
				return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
			}

			r.logger.DebugContext(ctx, "format written", slog.String("format", string(format)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var written []string
	for _, paths := range results {
		written = append(written, paths...)
	}
	return written, nil
}

func writeJSONFile(path string, vm *domain.ViewModel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeJSON(f, vm); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

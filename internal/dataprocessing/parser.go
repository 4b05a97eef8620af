package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	apperrors "bikepulse/internal/errors"
	"bikepulse/pkg/contracts/domain"
)

// Dataset column names. Extra columns in the file are ignored.
const (
	ColDate        = "dteday"
	ColSeason      = "season"
	ColYear        = "yr"
	ColHoliday     = "holiday"
	ColWeekday     = "weekday"
	ColTemperature = "temp"
	ColHumidity    = "hum"
	ColCount       = "cnt"
)

// RequiredColumns lists the columns every dataset must provide.
var RequiredColumns = []string{
	ColDate, ColSeason, ColYear, ColHoliday, ColWeekday, ColTemperature, ColHumidity, ColCount,
}

// dateLayouts are tried in order when parsing dteday.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"1/2/2006",
}

// fieldColumns maps Record fields to the column they were read from, for
// reporting validation failures.
var fieldColumns = map[string]string{
	"Date":        ColDate,
	"Season":      ColSeason,
	"YearIndex":   ColYear,
	"Holiday":     ColHoliday,
	"Weekday":     ColWeekday,
	"RentalCount": ColCount,
}

// ErrUnsupportedFormat is returned for dataset files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Loader reads the rental dataset into an immutable RecordTable. Loading is
// strict: the first malformed row aborts the whole load.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a dataset loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger.With(slog.String("component", "loader")),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadFile loads a .csv or .xlsx dataset file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.RecordTable, error) {
	start := time.Now()

	var (
		table *domain.RecordTable
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, apperrors.NewStorageError("failed to open dataset", openErr).WithContext("path", path)
		}
		defer f.Close()
		table, err = l.LoadCSV(ctx, f)
	case ".xlsx":
		table, err = l.loadExcel(ctx, path)
	default:
		return nil, apperrors.NewParsingError(fmt.Sprintf("dataset extension %q", ext), ErrUnsupportedFormat).
			WithContext("path", path)
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("records", table.Len()),
		slog.String("min_date", table.MinDate().Format(domain.DateLayout)),
		slog.String("max_date", table.MaxDate().Format(domain.DateLayout)),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

// LoadCSV loads a dataset from CSV text with a header row. Row numbers in
// errors are the physical line the record starts on.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (*domain.RecordTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, apperrors.NewParsingError(fmt.Sprintf("row %d", parseErr.StartLine), err).
					WithContext("row", parseErr.StartLine)
			}
			return nil, apperrors.NewStorageError("failed to read dataset", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	return l.parseRows(ctx, rows, lines)
}

func (l *Loader) loadExcel(ctx context.Context, path string) (*domain.RecordTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q", sheets[0]), err)
	}

	l.logger.DebugContext(ctx, "reading workbook sheet",
		slog.String("sheet_name", sheets[0]),
		slog.Int("total_rows", len(rows)))

	return l.parseRows(ctx, rows, nil)
}

// parseRows maps the header onto column positions and converts every data row.
// lines holds the source line of each row; when nil, rows[i] is line i+1.
func (l *Loader) parseRows(ctx context.Context, rows [][]string, lines []int) (*domain.RecordTable, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("dataset has no header row", nil)
	}

	columnMap := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
		if _, seen := columnMap[name]; !seen {
			columnMap[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := columnMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewParsingError("missing required columns", nil).
			WithContext("columns", missing)
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2
		if lines != nil {
			rowNum = lines[i+1]
		}
		rec, err := l.parseRow(row, columnMap, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	table, err := domain.NewRecordTable(records)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid dataset", err)
	}

	l.logger.DebugContext(ctx, "dataset rows parsed", slog.Int("records", len(records)))
	return table, nil
}

func (l *Loader) parseRow(row []string, columnMap map[string]int, rowNum int) (domain.Record, error) {
	cell := func(col string) string {
		idx := columnMap[col]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rec domain.Record

	date, err := parseDate(cell(ColDate))
	if err != nil {
		return rec, apperrors.NewRowError(rowNum, ColDate, err)
	}
	rec.Date = date

	ints := []struct {
		col string
		dst func(int64)
	}{
		{ColSeason, func(v int64) { rec.Season = domain.Season(v) }},
		{ColYear, func(v int64) { rec.YearIndex = int(v) }},
		{ColHoliday, func(v int64) { rec.Holiday = domain.HolidayFlag(v) }},
		{ColWeekday, func(v int64) { rec.Weekday = domain.Weekday(v) }},
		{ColCount, func(v int64) { rec.RentalCount = v }},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(cell(f.col), 10, 64)
		if err != nil {
			return rec, apperrors.NewRowError(rowNum, f.col, err)
		}
		f.dst(v)
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColTemperature, &rec.Temperature},
		{ColHumidity, &rec.Humidity},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(cell(f.col), 64)
		if err != nil {
			return rec, apperrors.NewRowError(rowNum, f.col, err)
		}
		// ParseFloat accepts NaN and Inf, which JSON cannot encode.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return rec, apperrors.NewRowError(rowNum, f.col, fmt.Errorf("non-finite value %q", cell(f.col)))
		}
		*f.dst = v
	}

	if err := l.validate.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return rec, apperrors.NewRowError(rowNum, fieldColumns[fe.Field()],
				fmt.Errorf("value %v fails %s=%s", fe.Value(), fe.Tag(), fe.Param()))
		}
		return rec, apperrors.NewRowError(rowNum, "", err)
	}

	return rec, nil
}

// parseDate accepts the canonical layout and the two spreadsheet variants.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// RangeRequest carries the raw start/end strings of a dashboard request.
// Empty strings select the dataset bound.
type RangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ViewResult is one summary table for a resolved range.
type ViewResult struct {
	View    domain.ViewID    `json:"view"`
	Range   domain.DateRange `json:"range"`
	Section domain.Section   `json:"section"`
	Rows    any              `json:"rows"`
}

// DashboardService owns the loaded dataset and renders it per request.
// The table is read-only after construction, so the service is safe for
// concurrent use.
type DashboardService struct {
	table   *domain.RecordTable
	source  string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// DashboardOption configures a DashboardService.
type DashboardOption func(*DashboardService)

// WithTracer sets the tracer used for render spans.
func WithTracer(tracer trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the business metrics recorded on each render.
func WithMetrics(metrics *infrastructure.BusinessMetrics) DashboardOption {
	return func(s *DashboardService) {
		s.metrics = metrics
	}
}

// WithSource records where the dataset was loaded from.
func WithSource(source string) DashboardOption {
	return func(s *DashboardService) {
		s.source = source
	}
}

// NewDashboardService creates a dashboard service over a loaded table.
func NewDashboardService(table *domain.RecordTable, logger *slog.Logger, opts ...DashboardOption) (*DashboardService, error) {
	if table == nil || table.Len() == 0 {
		return nil, ErrDatasetNotLoaded
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardService{
		table:  table,
		logger: logger.With(slog.String("component", "dashboard_service")),
		tracer: otel.Tracer(infrastructure.MeterName + ".dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("dashboard service initialized",
		slog.String("source", s.source),
		slog.Int("records", table.Len()),
		slog.String("min_date", table.MinDate().Format(domain.DateLayout)),
		slog.String("max_date", table.MaxDate().Format(domain.DateLayout)),
	)

	return s, nil
}

// LoadDashboardService loads the dataset at path and builds a service over it.
func LoadDashboardService(ctx context.Context, loader *dataprocessing.Loader, path string, logger *slog.Logger, opts ...DashboardOption) (*DashboardService, error) {
	probe := &DashboardService{tracer: otel.Tracer(infrastructure.MeterName + ".dashboard")}
	for _, opt := range opts {
		opt(probe)
	}

	ctx, span := probe.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.path", path)),
	)
	defer span.End()

	start := time.Now()
	table, err := loader.LoadFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		return nil, err
	}
	infrastructure.RecordDatasetLoad(ctx, probe.metrics, path, table.Len(), time.Since(start))
	span.SetAttributes(attribute.Int("dataset.records", table.Len()))

	return NewDashboardService(table, logger, append([]DashboardOption{WithSource(path)}, opts...)...)
}

// Table returns the loaded dataset.
func (s *DashboardService) Table() *domain.RecordTable {
	return s.table
}

// Bounds returns the full dataset range.
func (s *DashboardService) Bounds(ctx context.Context) domain.DateRange {
	return domain.DateRange{
		Start:       s.table.MinDate(),
		End:         s.table.MaxDate(),
		MinDate:     s.table.MinDate(),
		MaxDate:     s.table.MaxDate(),
		RecordCount: s.table.Len(),
	}
}

// ResolveRange turns a RangeRequest into concrete dates. Missing dates take
// the dataset bound, dates outside the dataset are clamped into it and a
// reversed range is returned as is. A range lying wholly outside the dataset
// therefore collapses onto the nearest boundary day.
func (s *DashboardService) ResolveRange(req RangeRequest) (time.Time, time.Time, error) {
	start, err := s.resolveDate("start", req.Start, s.table.MinDate())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := s.resolveDate("end", req.End, s.table.MaxDate())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *DashboardService) resolveDate(field, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, apierrors.InvalidDateError(field, value)
	}

	switch minDate, maxDate := s.table.MinDate(), s.table.MaxDate(); {
	case d.Before(minDate):
		return minDate, nil
	case d.After(maxDate):
		return maxDate, nil
	}
	return d, nil
}

// Render produces the dashboard view model for the requested range.
func (s *DashboardService) Render(ctx context.Context, req RangeRequest) (*domain.ViewModel, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.render",
		trace.WithAttributes(
			attribute.String("range.start", req.Start),
			attribute.String("range.end", req.End),
		),
	)
	defer span.End()

	begin := time.Now()

	start, end, err := s.ResolveRange(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid range")
		infrastructure.RecordRenderMetrics(ctx, s.metrics, "dashboard", 0, time.Since(begin), err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vm := dataprocessing.Render(s.table, start, end)

	duration := time.Since(begin)
	infrastructure.RecordRenderMetrics(ctx, s.metrics, "dashboard", vm.Range.RecordCount, duration, nil)
	span.SetAttributes(
		attribute.String("range.resolved_start", start.Format(domain.DateLayout)),
		attribute.String("range.resolved_end", end.Format(domain.DateLayout)),
		attribute.Int("range.records", vm.Range.RecordCount),
	)

	if vm.Range.RecordCount == 0 {
		s.logger.DebugContext(ctx, "render produced an empty range",
			slog.String("start", start.Format(domain.DateLayout)),
			slog.String("end", end.Format(domain.DateLayout)),
		)
	}

	return &vm, nil
}

// View renders a single summary table by name.
func (s *DashboardService) View(ctx context.Context, req RangeRequest, name string) (*ViewResult, error) {
	id, err := domain.ParseViewID(name)
	if err != nil {
		return nil, apierrors.UnknownViewError(name)
	}

	vm, err := s.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	section := vm.Section(id)
	if section == nil {
		return nil, apierrors.UnknownViewError(name)
	}

	return &ViewResult{
		View:    id,
		Range:   vm.Range,
		Section: *section,
		Rows:    TableRows(vm.Tables, id),
	}, nil
}

// TableRows returns the key-ordered summary table for a view.
func TableRows(tables domain.SummaryTables, id domain.ViewID) any {
	switch id {
	case domain.ViewDaily:
		return tables.Daily
	case domain.ViewSeasonal:
		return tables.Seasonal
	case domain.ViewYearly:
		return tables.Yearly
	case domain.ViewHoliday:
		return tables.Holiday
	case domain.ViewWeekday:
		return tables.Weekday
	}
	return nil
}

package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/middleware"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts/domain"
)

// DashboardService is the part of services.DashboardService the handlers use.
type DashboardService interface {
	Render(ctx context.Context, req services.RangeRequest) (*domain.ViewModel, error)
	View(ctx context.Context, req services.RangeRequest, name string) (*services.ViewResult, error)
	Bounds(ctx context.Context) domain.DateRange
}

// DashboardHandler serves the dashboard JSON API and downloads.
type DashboardHandler struct {
	service      DashboardService
	validator    *middleware.QueryValidator
	csv          *exporter.CSVExporter
	excel        *exporter.ExcelExporter
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler. metrics may be nil.
func NewDashboardHandler(service DashboardService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewQueryValidator(logger, errorHandler),
		csv:          exporter.NewCSVExporter(logger),
		excel:        exporter.NewExcelExporter(logger),
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/range", h.GetRange)

	r.Group(func(r chi.Router) {
		r.Use(h.validator.ValidateDateRange)

		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetDashboard)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/views/{view}", h.GetView)
		r.Get("/export.xlsx", h.ExportWorkbook)
		r.Get("/export/{view}.csv", h.ExportView)
	})

	return r
}

func (h *DashboardHandler) rangeRequest(r *http.Request) (services.RangeRequest, error) {
	q, err := h.validator.ParseDateRange(r)
	if err != nil {
		return services.RangeRequest{}, err
	}
	return services.RangeRequest{Start: q.Start, End: q.End}, nil
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := h.rangeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	vm, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, vm)
}

// GetRange handles GET /api/dashboard/range
func (h *DashboardHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Bounds(r.Context()))
}

// GetView handles GET /api/dashboard/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	if _, err := h.validator.ValidateView(name); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	infrastructure.SetSpanAttributes(r.Context(), map[string]interface{}{"dashboard.view": name})

	req, err := h.rangeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.View(r.Context(), req, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// ExportWorkbook handles GET /api/dashboard/export.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	vm, ok := h.renderForExport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := h.excel.Write(&buf, vm)
	infrastructure.RecordExport(r.Context(), h.metrics, string(exporter.FormatXLSX), err)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError(string(exporter.FormatXLSX), err))
		return
	}

	h.writeDownload(w, r, exporter.WorkbookFileName,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportView handles GET /api/dashboard/export/{view}.csv
func (h *DashboardHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	view, err := h.validator.ValidateView(chi.URLParam(r, "view"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	infrastructure.SetSpanAttributes(r.Context(), map[string]interface{}{
		"dashboard.view":   string(view),
		"dashboard.format": string(exporter.FormatCSV),
	})

	vm, ok := h.renderForExport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err = h.csv.WriteView(&buf, vm, view)
	infrastructure.RecordExport(r.Context(), h.metrics, string(exporter.FormatCSV), err)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError(string(exporter.FormatCSV), err))
		return
	}

	h.writeDownload(w, r, exporter.FileName(view), "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DashboardHandler) renderForExport(w http.ResponseWriter, r *http.Request) (*domain.ViewModel, bool) {
	req, err := h.rangeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	vm, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return vm, true
}

// writeDownload sends a fully buffered file so a failed export never leaves
// a half written response.
func (h *DashboardHandler) writeDownload(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

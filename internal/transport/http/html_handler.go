package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format(domain.DateLayout)
	},
	"value": func(v *float64) string {
		if v == nil {
			return dataprocessing.Placeholder
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"category": func(c domain.ChartSpec) string {
		if c.Kind == domain.ChartHorizontalBar {
			return c.YLabel
		}
		return c.XLabel
	},
	"measure": func(c domain.ChartSpec) string {
		if c.Kind == domain.ChartHorizontalBar {
			return c.XLabel
		}
		return c.YLabel
	},
	"placeholder": func() string {
		return dataprocessing.Placeholder
	},
}

var dashboardPage = template.Must(
	template.New("dashboard.html").Funcs(pageFuncs).ParseFS(templateFS, "templates/dashboard.html"),
)

// PageHandler serves the server-rendered dashboard at /.
type PageHandler struct {
	service      DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates the HTML dashboard handler
func NewPageHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	return &PageHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /?start=&end=
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := services.RangeRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}

	vm, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Render into a buffer so template errors still produce a clean 500.
	var buf bytes.Buffer
	if err := dashboardPage.Execute(&buf, vm); err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard template failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "page write interrupted", slog.String("error", err.Error()))
	}
}

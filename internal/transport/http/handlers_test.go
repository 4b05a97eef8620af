package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/services"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Render(ctx context.Context, req services.RangeRequest) (*domain.ViewModel, error) {
	args := m.Called(ctx, req)
	vm, _ := args.Get(0).(*domain.ViewModel)
	return vm, args.Error(1)
}

func (m *mockDashboardService) View(ctx context.Context, req services.RangeRequest, name string) (*services.ViewResult, error) {
	args := m.Called(ctx, req, name)
	res, _ := args.Get(0).(*services.ViewResult)
	return res, args.Error(1)
}

func (m *mockDashboardService) Bounds(ctx context.Context) domain.DateRange {
	return m.Called(ctx).Get(0).(domain.DateRange)
}

func newScenarioService(t *testing.T) *services.DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := services.NewDashboardService(testutil.ScenarioTable(t), logger)
	require.NoError(t, err)
	return svc
}

func newDashboardRouter(t *testing.T, svc DashboardService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, nil, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/dashboard", h.Routes())
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	router := newDashboardRouter(t, newScenarioService(t))

	tests := []struct {
		name    string
		target  string
		records float64
	}{
		{name: "full range by default", target: "/api/dashboard", records: 3},
		{name: "explicit range", target: "/api/dashboard?start=2011-01-03&end=2011-01-04", records: 2},
		{name: "clamped range", target: "/api/dashboard?start=2010-01-01&end=2011-01-03", records: 1},
		{name: "range after the dataset", target: "/api/dashboard?start=2013-06-01&end=2013-06-01", records: 1},
		{name: "reversed range", target: "/api/dashboard?start=2011-01-05&end=2011-01-03", records: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			body := decodeBody(t, rec)
			assert.Equal(t, "Rental Bike Dashboard", body["header"])
			assert.Equal(t, tt.records, body["range"].(map[string]any)["record_count"])
			assert.Len(t, body["sections"], len(domain.Views))
		})
	}
}

func TestDashboardHandler_InvalidDate(t *testing.T) {
	router := newDashboardRouter(t, newScenarioService(t))

	for _, target := range []string{
		"/api/dashboard?start=2011-13-01",
		"/api/dashboard?end=yesterday",
		"/api/dashboard/views/daily?start=01/03/2011",
		"/api/dashboard/export.xlsx?end=2011-1-5",
		"/api/dashboard/export/daily.csv?start=x",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, router, target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, apierrors.TypeInvalidDate, body["type"])
			assert.Equal(t, "INVALID_DATE", body["error_code"])
		})
	}
}

func TestDashboardHandler_GetRange(t *testing.T) {
	rec := get(t, newDashboardRouter(t, newScenarioService(t)), "/api/dashboard/range")
	require.Equal(t, http.StatusOK, rec.Code)

	var bounds domain.DateRange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bounds))
	assert.Equal(t, 3, bounds.RecordCount)
	assert.Equal(t, "2011-01-03", bounds.MinDate.Format(domain.DateLayout))
	assert.Equal(t, "2011-01-05", bounds.MaxDate.Format(domain.DateLayout))
}

func TestDashboardHandler_GetView(t *testing.T) {
	router := newDashboardRouter(t, newScenarioService(t))

	t.Run("known view", func(t *testing.T) {
		rec := get(t, router, "/api/dashboard/views/seasonal?start=2011-01-03&end=2011-01-05")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "seasonal", body["view"])
		rows := body["rows"].([]any)
		require.Len(t, rows, 4)
		// Fall and Winter have no days in range.
		assert.Nil(t, rows[2].(map[string]any)["avg_rentals"])
	})

	t.Run("unknown view", func(t *testing.T) {
		rec := get(t, router, "/api/dashboard/views/monthly")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, apierrors.TypeViewNotFound, body["type"])
		assert.Equal(t, "VIEW_NOT_FOUND", body["error_code"])
	})
}

func TestDashboardHandler_ViewSpanAttributes(t *testing.T) {
	router := newDashboardRouter(t, newScenarioService(t))
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	tests := []struct {
		target string
		want   []attribute.KeyValue
	}{
		{
			target: "/api/dashboard/views/weekday",
			want:   []attribute.KeyValue{attribute.String("dashboard.view", "weekday")},
		},
		{
			target: "/api/dashboard/export/holiday.csv",
			want: []attribute.KeyValue{
				attribute.String("dashboard.view", "holiday"),
				attribute.String("dashboard.format", "csv"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			ctx, span := tracer.Start(req.Context(), "request")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req.WithContext(ctx))
			span.End()
			require.Equal(t, http.StatusOK, rec.Code)

			spans := recorder.Ended()
			attrs := spans[len(spans)-1].Attributes()
			for _, kv := range tt.want {
				assert.Contains(t, attrs, kv)
			}
		})
	}
}

func TestDashboardHandler_ExportView(t *testing.T) {
	router := newDashboardRouter(t, newScenarioService(t))

	rec := get(t, router, "/api/dashboard/export/daily.csv?start=2011-01-03&end=2011-01-04")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="daily_usage.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "dteday,total_rentals,avg_temp,avg_humidity", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "2011-01-03,100,"))

	rec = get(t, router, "/api/dashboard/export/monthly.csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandler_ExportWorkbook(t *testing.T) {
	rec := get(t, newDashboardRouter(t, newScenarioService(t)), "/api/dashboard/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+exporter.WorkbookFileName+`"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, exporter.SummarySheet, sheets[0])
	assert.Len(t, sheets, 1+len(exporter.ExportOrder))

	total, err := f.GetCellValue(exporter.SummarySheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "350", total)
}

func TestDashboardHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError},
		{name: "dataset missing", err: apierrors.NewNotFoundError("dataset"), status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockDashboardService)
			svc.On("Render", mock.Anything, services.RangeRequest{Start: "2011-01-03"}).Return(nil, tt.err)

			rec := get(t, newDashboardRouter(t, svc), "/api/dashboard?start=2011-01-03")
			assert.Equal(t, tt.status, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name    string
		dataset services.DatasetProvider
		status  int
		body    string
	}{
		{name: "ready", dataset: newScenarioService(t), status: http.StatusOK, body: `"status":"ready"`},
		{name: "no dataset", dataset: nil, status: http.StatusServiceUnavailable, body: "dataset not loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService(tt.dataset, nil, logger), logger)
			rec := get(t, h.Routes(), "/ready")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}

	h := NewHealthHandler(services.NewHealthService(nil, nil, logger), logger)
	assert.Equal(t, http.StatusOK, get(t, h.Routes(), "/").Code)
	assert.Contains(t, get(t, h.Routes(), "/live").Body.String(), `"status":"alive"`)

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Contains(t, rec.Body.String(), "start_time")
}

func TestPageHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewPageHandler(newScenarioService(t), logger, apierrors.NewErrorHandler(logger, false))

	t.Run("renders page", func(t *testing.T) {
		rec := get(t, h, "/?start=2011-01-03&end=2011-01-04")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

		page := rec.Body.String()
		assert.Contains(t, page, "<h1>Rental Bike Dashboard</h1>")
		assert.Contains(t, page, "2 days selected")
		assert.Contains(t, page, `value="2011-01-03"`)
		assert.Contains(t, page, `min="2011-01-03"`)
		assert.Contains(t, page, `max="2011-01-05"`)
		assert.Contains(t, page, "Seasonal Bike Usage")
		assert.Contains(t, page, "/api/dashboard/export/weekday.csv")
		// Summer has no days in the range.
		assert.Contains(t, page, "—")
	})

	t.Run("rejects bad dates", func(t *testing.T) {
		rec := get(t, h, "/?end=2011-02-30")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPageFuncs(t *testing.T) {
	value := pageFuncs["value"].(func(*float64) string)
	assert.Equal(t, "—", value(nil))
	assert.Equal(t, "4.50", value(domain.Float(4.5)))

	bar := domain.ChartSpec{Kind: domain.ChartHorizontalBar, XLabel: "Average Rentals", YLabel: "Season"}
	line := domain.ChartSpec{Kind: domain.ChartLine, XLabel: "Date", YLabel: "Total Rentals"}

	category := pageFuncs["category"].(func(domain.ChartSpec) string)
	measure := pageFuncs["measure"].(func(domain.ChartSpec) string)
	assert.Equal(t, "Season", category(bar))
	assert.Equal(t, "Average Rentals", measure(bar))
	assert.Equal(t, "Date", category(line))
	assert.Equal(t, "Total Rentals", measure(line))

	date := pageFuncs["date"].(func(time.Time) string)
	assert.Equal(t, "2011-01-03", date(time.Date(2011, 1, 3, 0, 0, 0, 0, time.UTC)))
}

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/internal/dataprocessing"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts/domain"
)

func newScenarioService(t *testing.T) *DashboardService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewDashboardService(testutil.ScenarioTable(t), logger)
	require.NoError(t, err)
	return svc
}

func TestNewDashboardService_RequiresTable(t *testing.T) {
	svc, err := NewDashboardService(nil, nil)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestDashboardService_Bounds(t *testing.T) {
	svc := newScenarioService(t)

	bounds := svc.Bounds(context.Background())
	assert.Equal(t, testutil.Day(t, "2011-01-03"), bounds.MinDate)
	assert.Equal(t, testutil.Day(t, "2011-01-05"), bounds.MaxDate)
	assert.Equal(t, bounds.MinDate, bounds.Start)
	assert.Equal(t, bounds.MaxDate, bounds.End)
	assert.Equal(t, 3, bounds.RecordCount)
}

func TestDashboardService_ResolveRange(t *testing.T) {
	svc := newScenarioService(t)

	tests := []struct {
		name      string
		req       RangeRequest
		wantStart string
		wantEnd   string
	}{
		{name: "defaults to dataset bounds", req: RangeRequest{}, wantStart: "2011-01-03", wantEnd: "2011-01-05"},
		{name: "missing end", req: RangeRequest{Start: "2011-01-04"}, wantStart: "2011-01-04", wantEnd: "2011-01-05"},
		{name: "missing start", req: RangeRequest{End: "2011-01-04"}, wantStart: "2011-01-03", wantEnd: "2011-01-04"},
		{name: "clamps early start", req: RangeRequest{Start: "2010-06-01", End: "2011-01-04"}, wantStart: "2011-01-03", wantEnd: "2011-01-04"},
		{name: "clamps late end", req: RangeRequest{Start: "2011-01-04", End: "2013-01-01"}, wantStart: "2011-01-04", wantEnd: "2011-01-05"},
		{name: "range after the dataset clamps to the last day", req: RangeRequest{Start: "2013-06-01", End: "2013-06-01"}, wantStart: "2011-01-05", wantEnd: "2011-01-05"},
		{name: "range before the dataset clamps to the first day", req: RangeRequest{Start: "2009-01-01", End: "2010-12-31"}, wantStart: "2011-01-03", wantEnd: "2011-01-03"},
		{name: "reversed range passes through", req: RangeRequest{Start: "2011-01-05", End: "2011-01-03"}, wantStart: "2011-01-05", wantEnd: "2011-01-03"},
		{name: "surrounding whitespace", req: RangeRequest{Start: " 2011-01-04 "}, wantStart: "2011-01-04", wantEnd: "2011-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := svc.ResolveRange(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.Format(domain.DateLayout))
			assert.Equal(t, tt.wantEnd, end.Format(domain.DateLayout))
		})
	}
}

func TestDashboardService_ResolveRange_InvalidDate(t *testing.T) {
	svc := newScenarioService(t)

	tests := []struct {
		name  string
		req   RangeRequest
		field string
	}{
		{name: "bad start", req: RangeRequest{Start: "01/03/2011"}, field: "start"},
		{name: "bad end", req: RangeRequest{End: "2011-13-01"}, field: "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ResolveRange(tt.req)
			require.Error(t, err)

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "INVALID_DATE", apiErr.ErrorCode)
			assert.Contains(t, apiErr.Message, tt.field)
		})
	}
}

func TestDashboardService_Render(t *testing.T) {
	svc := newScenarioService(t)

	vm, err := svc.Render(context.Background(), RangeRequest{Start: "2011-01-03", End: "2011-01-04"})
	require.NoError(t, err)

	assert.Equal(t, dataprocessing.DashboardHeader, vm.Header)
	assert.Equal(t, 2, vm.Range.RecordCount)
	require.Len(t, vm.Sections, len(domain.Views))
	for i, id := range domain.Views {
		assert.Equal(t, id, vm.Sections[i].View)
	}
	assert.Equal(t, "150", vm.Headline()[0].Value)
}

func TestDashboardService_Render_ReversedRangeIsEmpty(t *testing.T) {
	svc := newScenarioService(t)

	vm, err := svc.Render(context.Background(), RangeRequest{Start: "2011-01-05", End: "2011-01-03"})
	require.NoError(t, err)

	assert.Zero(t, vm.Range.RecordCount)
	assert.Empty(t, vm.Tables.Daily)
	metrics := vm.Headline()
	require.Len(t, metrics, 3)
	assert.Equal(t, "0", metrics[0].Value)
	assert.Equal(t, dataprocessing.Placeholder, metrics[1].Value)
	assert.Nil(t, metrics[1].Raw)
}

func TestDashboardService_Render_CancelledContext(t *testing.T) {
	svc := newScenarioService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Render(ctx, RangeRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboardService_View(t *testing.T) {
	svc := newScenarioService(t)

	res, err := svc.View(context.Background(), RangeRequest{}, "holiday")
	require.NoError(t, err)

	assert.Equal(t, domain.ViewHoliday, res.View)
	assert.Equal(t, domain.ViewHoliday, res.Section.View)
	rows, ok := res.Rows.([]domain.HolidayUsageRow)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.NonHoliday, rows[0].Holiday)
	require.NotNil(t, rows[0].AvgRentals)
	assert.InDelta(t, 150.0, *rows[0].AvgRentals, 1e-9)
}

func TestDashboardService_View_Unknown(t *testing.T) {
	svc := newScenarioService(t)

	_, err := svc.View(context.Background(), RangeRequest{}, "monthly")
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "VIEW_NOT_FOUND", apiErr.ErrorCode)
}

func TestTableRows(t *testing.T) {
	tables := dataprocessing.Summarize(testutil.ScenarioRecords(t))

	for _, id := range domain.Views {
		assert.NotNil(t, TableRows(tables, id), id)
	}
	assert.Nil(t, TableRows(tables, domain.ViewID("monthly")))
}

func TestLoadDashboardService(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	path := testutil.WriteFile(t, "day.csv", testutil.DatasetCSV(testutil.ScenarioRecords(t)))

	svc, err := LoadDashboardService(context.Background(), dataprocessing.NewLoader(logger), path, logger)
	require.NoError(t, err)

	assert.Equal(t, 3, svc.Table().Len())
	assert.True(t, logs.ContainsMessage("dashboard service initialized"))
	assert.True(t, logs.ContainsAttr("source", path))
}

func TestLoadDashboardService_MalformedRow(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	content := testutil.DatasetHeader + "\n1,2011-01-01,9,0,1,0,6,0,2,0.34,0.36,0.80,0.16,331,654,985\n"
	path := testutil.WriteFile(t, "day.csv", content)

	svc, err := LoadDashboardService(context.Background(), dataprocessing.NewLoader(logger), path, logger)
	assert.Nil(t, svc)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
}
